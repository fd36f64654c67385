package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gofrota/config"
	"gofrota/internal/pkg/cache"
	"gofrota/internal/pkg/database"
	"gofrota/internal/pkg/logger"
	"gofrota/internal/pkg/token"

	// Camadas da frota para Injeção de Dependências
	"gofrota/internal/api/driver"
	"gofrota/internal/api/operator"
	"gofrota/internal/api/router"
	"gofrota/internal/api/utilization"
	"gofrota/internal/api/vehicle"
	"gofrota/internal/repository/driverrepo"
	"gofrota/internal/repository/operatorrepo"
	"gofrota/internal/repository/utilizationrepo"
	"gofrota/internal/repository/vehiclerepo"
	"gofrota/internal/service/driverservice"
	"gofrota/internal/service/operatorservice"
	"gofrota/internal/service/utilizationservice"
	"gofrota/internal/service/vehicleservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço GoFrota...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, seguimos com as variáveis do ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	jwtExpiry := time.Hour * time.Duration(cfg.JWTExpiryHours)
	tokenSvc := token.NewService(cfg.JWTSecretKey, jwtExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	vehicleRepo := vehiclerepo.NewVehicleRepository(db, cacheClient, cfg.DBTimeout, cfg.VehicleCacheTTL, log)
	driverRepo := driverrepo.NewDriverRepository(db, cfg.DBTimeout, log)
	operatorRepo := operatorrepo.NewOperatorRepository(db, cfg.DBTimeout, log)
	utilizationRepo := utilizationrepo.NewUtilizationRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	// O serviço de veículos consulta as utilizações em aberto antes de excluir;
	// o serviço de utilizações consulta os cadastros de veículos e motoristas.
	vehicleSvc := vehicleservice.NewService(vehicleRepo, utilizationRepo, log)
	driverSvc := driverservice.NewService(driverRepo, log)
	operatorSvc := operatorservice.NewService(operatorRepo, tokenSvc, log)
	utilizationSvc := utilizationservice.NewService(utilizationRepo, vehicleRepo, driverRepo, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	vehicleHandler := vehicle.NewHandler(vehicleSvc, log)
	driverHandler := driver.NewHandler(driverSvc, log)
	operatorHandler := operator.NewHandler(operatorSvc, log)
	utilizationHandler := utilization.NewHandler(utilizationSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(vehicleHandler, driverHandler, operatorHandler, utilizationHandler, tokenSvc, cacheClient, router.Options{
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoFrota ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou: %v", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
