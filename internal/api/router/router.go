package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gofrota/internal/api/driver"
	"gofrota/internal/api/operator"
	"gofrota/internal/api/utilization"
	"gofrota/internal/api/vehicle"
	"gofrota/internal/pkg/cache"
	"gofrota/internal/pkg/middleware"
)

// Options carrega os parâmetros de middleware aplicados pelo roteador.
type Options struct {
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
// As rotas que mudam estado de utilização (retirada, devolução e exclusão)
// exigem o token de operador via middleware de autenticação.
func NewRouter(
	vehicleHandler *vehicle.Handler,
	driverHandler *driver.Handler,
	operatorHandler *operator.Handler,
	utilizationHandler *utilization.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	opts Options,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()
	auth := middleware.NewAuthMiddleware(tokenSvc)

	// --- 1. Rotas de Health Check e documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Rotas do Módulo de Veículos (v1) ---
	mux.HandleFunc("/v1/vehicles", vehicleHandler.CollectionHandler)
	mux.HandleFunc("/v1/vehicles/", vehicleHandler.ItemHandler)

	// --- 3. Rotas do Módulo de Motoristas (v1) ---
	mux.HandleFunc("/v1/drivers", driverHandler.CollectionHandler)
	mux.HandleFunc("/v1/drivers/", driverHandler.ItemHandler)

	// --- 4. Rotas do Módulo de Operadores (v1) ---
	mux.HandleFunc("/v1/operators/register", operatorHandler.RegisterHandler)
	mux.HandleFunc("/v1/operators/login", operatorHandler.LoginHandler)
	mux.HandleFunc("/v1/operators", operatorHandler.CollectionHandler)
	mux.HandleFunc("/v1/operators/", operatorHandler.ItemHandler)

	// --- 5. Rotas do Módulo de Utilizações (v1) ---
	// Retirada e devolução só acontecem com operador autenticado.
	mux.HandleFunc("/v1/utilizations/checkout", auth(utilizationHandler.CheckoutHandler))
	mux.HandleFunc("/v1/utilizations/return", auth(utilizationHandler.ReturnHandler))
	mux.HandleFunc("/v1/utilizations/status/", utilizationHandler.StatusHandler)
	mux.HandleFunc("/v1/utilizations", utilizationHandler.CollectionHandler)
	mux.HandleFunc("/v1/utilizations/", func(w http.ResponseWriter, r *http.Request) {
		// DELETE muda estado e exige autenticação; GET é consulta livre.
		if r.Method == http.MethodDelete {
			auth(utilizationHandler.ItemHandler)(w, r)
			return
		}
		utilizationHandler.ItemHandler(w, r)
	})

	// --- 6. Middlewares Globais ---
	return middleware.RateLimiter(cacheClient, opts.RateLimitMaxRequests, opts.RateLimitPeriod)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
