package utilization

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
	"gofrota/internal/pkg/middleware"
)

// dateLayout é o formato aceito nos filtros de data da querystring.
const dateLayout = "2006-01-02"

// UtilizationService define o contrato para o ciclo de vida das utilizações.
type UtilizationService interface {
	Checkout(ctx context.Context, plate string, driverCode int, operator *domain.Operator) (domain.Utilization, error)
	Return(ctx context.Context, plate string, operator *domain.Operator) (domain.Utilization, error)
	ListOpen(ctx context.Context) ([]domain.Utilization, error)
	ListByPlate(ctx context.Context, plate string) ([]domain.Utilization, error)
	FindOnDate(ctx context.Context, plate string, date time.Time) ([]domain.Utilization, error)
	ListByPeriod(ctx context.Context, startDate, endDate time.Time) ([]domain.Utilization, error)
	ListAll(ctx context.Context) ([]domain.Utilization, error)
	ListAllSorted(ctx context.Context, ascending bool) ([]domain.Utilization, error)
	FindByCode(ctx context.Context, code int) (domain.Utilization, error)
	IsVehicleInUse(ctx context.Context, plate string) (bool, error)
	Remove(ctx context.Context, code int, operator *domain.Operator) (bool, error)
}

// CheckoutRequest é o payload de retirada de veículo.
type CheckoutRequest struct {
	VehiclePlate string `json:"vehicle_plate"`
	DriverCode   int    `json:"driver_code"`
}

// ReturnRequest é o payload de devolução de veículo.
type ReturnRequest struct {
	VehiclePlate string `json:"vehicle_plate"`
}

// Handler agrupa os métodos de Handler de utilizações.
type Handler struct {
	Service UtilizationService
	Logger  logger.Logger
}

func NewHandler(svc UtilizationService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de utilizações:", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// operatorFromContext converte as claims do middleware no operador efetivo da
// requisição. Retorna nil quando a rota não passou pelo middleware de auth.
func operatorFromContext(ctx context.Context) *domain.Operator {
	claims, ok := middleware.GetOperatorClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	return &domain.Operator{Code: claims.OperatorCode, Login: claims.Login}
}

// CheckoutHandler lida com POST /v1/utilizations/checkout.
// @Summary Registra a retirada de um veículo por um motorista
// @Tags utilizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkout body CheckoutRequest true "Placa do veículo e código do motorista"
// @Success 201 {object} domain.Utilization "Utilização aberta"
// @Failure 401 {object} domain.ErrorResponse "Operador não autenticado"
// @Failure 422 {object} domain.ErrorResponse "Veículo em uso ou referência inexistente"
// @Router /utilizations/checkout [post]
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
		return
	}

	created, err := h.Service.Checkout(r.Context(), req.VehiclePlate, req.DriverCode, operatorFromContext(r.Context()))
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// ReturnHandler lida com POST /v1/utilizations/return.
// @Summary Registra a devolução de um veículo
// @Tags utilizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param return body ReturnRequest true "Placa do veículo"
// @Success 200 {object} domain.Utilization "Utilização fechada"
// @Failure 401 {object} domain.ErrorResponse "Operador não autenticado"
// @Failure 422 {object} domain.ErrorResponse "Não há utilização em aberto"
// @Router /utilizations/return [post]
func (h *Handler) ReturnHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
		return
	}

	closed, err := h.Service.Return(r.Context(), req.VehiclePlate, operatorFromContext(r.Context()))
	h.handleServiceResponse(w, closed, err, http.StatusOK)
}

// CollectionHandler lida com GET /v1/utilizations e seus filtros de consulta.
// @Summary Lista utilizações com filtros opcionais
// @Tags utilizations
// @Produce json
// @Param open query bool false "Apenas utilizações em aberto"
// @Param plate query string false "Filtra pela placa do veículo"
// @Param date query string false "Dia da retirada (AAAA-MM-DD); exige plate"
// @Param start query string false "Início do período (AAAA-MM-DD)"
// @Param end query string false "Fim do período (AAAA-MM-DD)"
// @Param sort query string false "checked_out_at para ordenar pela retirada"
// @Success 200 {array} domain.Utilization
// @Router /utilizations [get]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	if q.Get("open") == "true" {
		list, err := h.Service.ListOpen(r.Context())
		h.handleServiceResponse(w, list, err, http.StatusOK)
		return
	}

	if plate := q.Get("plate"); plate != "" {
		if rawDate := q.Get("date"); rawDate != "" {
			date, err := time.Parse(dateLayout, rawDate)
			if err != nil {
				h.handleServiceResponse(w, nil, apperror.NewValidationError("Data inválida. Use o formato AAAA-MM-DD."), 0)
				return
			}
			list, err := h.Service.FindOnDate(r.Context(), plate, date)
			h.handleServiceResponse(w, list, err, http.StatusOK)
			return
		}
		list, err := h.Service.ListByPlate(r.Context(), plate)
		h.handleServiceResponse(w, list, err, http.StatusOK)
		return
	}

	if rawStart, rawEnd := q.Get("start"), q.Get("end"); rawStart != "" && rawEnd != "" {
		start, err := time.Parse(dateLayout, rawStart)
		if err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Data inicial inválida. Use o formato AAAA-MM-DD."), 0)
			return
		}
		end, err := time.Parse(dateLayout, rawEnd)
		if err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Data final inválida. Use o formato AAAA-MM-DD."), 0)
			return
		}
		list, err := h.Service.ListByPeriod(r.Context(), start, end)
		h.handleServiceResponse(w, list, err, http.StatusOK)
		return
	}

	if q.Get("sort") == "checked_out_at" {
		ascending := q.Get("order") != "desc"
		list, err := h.Service.ListAllSorted(r.Context(), ascending)
		h.handleServiceResponse(w, list, err, http.StatusOK)
		return
	}

	list, err := h.Service.ListAll(r.Context())
	h.handleServiceResponse(w, list, err, http.StatusOK)
}

// StatusHandler lida com GET /v1/utilizations/status/{plate}.
// @Summary Informa se o veículo está em uso
// @Tags utilizations
// @Produce json
// @Param plate path string true "Placa do veículo"
// @Success 200 {object} map[string]bool
// @Router /utilizations/status/{plate} [get]
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	plate := strings.TrimPrefix(r.URL.Path, "/v1/utilizations/status/")
	inUse, err := h.Service.IsVehicleInUse(r.Context(), plate)
	h.handleServiceResponse(w, map[string]bool{"in_use": inUse}, err, http.StatusOK)
}

// ItemHandler lida com /v1/utilizations/{code} (GET busca, DELETE exclui).
// @Summary Busca ou exclui uma utilização pelo código
// @Tags utilizations
// @Produce json
// @Security BearerAuth
// @Param code path int true "Código da utilização"
// @Success 200 {object} domain.Utilization
// @Failure 404 {object} domain.ErrorResponse "Utilização não encontrada"
// @Router /utilizations/{code} [get]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rawCode := strings.TrimPrefix(r.URL.Path, "/v1/utilizations/")
	code, err := strconv.Atoi(rawCode)
	if err != nil || code <= 0 {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("O código da utilização na URL deve ser um inteiro positivo."), 0)
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.Service.FindByCode(r.Context(), code)
		h.handleServiceResponse(w, u, err, http.StatusOK)

	case http.MethodDelete:
		removed, err := h.Service.Remove(r.Context(), code, operatorFromContext(r.Context()))
		if err == nil && !removed {
			err = apperror.NewNotFoundError("Utilização com código " + rawCode + " não existe na base de dados.")
		}
		h.handleServiceResponse(w, map[string]bool{"removed": removed}, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
