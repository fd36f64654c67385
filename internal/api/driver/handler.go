package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// DriverService define o contrato para as operações de cadastro de motoristas.
type DriverService interface {
	Register(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	Update(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	Remove(ctx context.Context, code int) (bool, error)
	FindByCode(ctx context.Context, code int) (domain.Driver, error)
	FindByCNH(ctx context.Context, cnh string) (domain.Driver, error)
	ListAll(ctx context.Context) ([]domain.Driver, error)
	ListBySector(ctx context.Context, sector string) ([]domain.Driver, error)
}

// Handler agrupa os métodos de Handler de motoristas.
type Handler struct {
	Service DriverService
	Logger  logger.Logger
}

func NewHandler(svc DriverService, log logger.Logger) *Handler {
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
		h.Logger.Error("Erro interno no serviço de motoristas:", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// CollectionHandler lida com /v1/drivers (POST cria, GET lista).
// @Summary Cadastra ou lista motoristas
// @Tags drivers
// @Accept json
// @Produce json
// @Param driver body domain.Driver true "Motorista (nome, CNH, setor)"
// @Success 201 {object} domain.Driver "Motorista criado"
// @Success 200 {array} domain.Driver "Lista de motoristas"
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos"
// @Failure 409 {object} domain.ErrorResponse "CNH já cadastrada"
// @Router /drivers [post]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var d domain.Driver
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
			return
		}
		created, err := h.Service.Register(r.Context(), d)
		h.handleServiceResponse(w, created, err, http.StatusCreated)

	case http.MethodGet:
		// Filtros opcionais: ?sector=Logística ou ?cnh=12345678901
		if sector := r.URL.Query().Get("sector"); sector != "" {
			drivers, err := h.Service.ListBySector(r.Context(), sector)
			h.handleServiceResponse(w, drivers, err, http.StatusOK)
			return
		}
		if cnh := r.URL.Query().Get("cnh"); cnh != "" {
			driver, err := h.Service.FindByCNH(r.Context(), cnh)
			h.handleServiceResponse(w, driver, err, http.StatusOK)
			return
		}
		drivers, err := h.Service.ListAll(r.Context())
		h.handleServiceResponse(w, drivers, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemHandler lida com /v1/drivers/{code} (GET busca, PUT atualiza, DELETE exclui).
// @Summary Busca, atualiza ou exclui um motorista pelo código
// @Tags drivers
// @Produce json
// @Param code path int true "Código do motorista"
// @Success 200 {object} domain.Driver
// @Failure 404 {object} domain.ErrorResponse "Motorista não encontrado"
// @Router /drivers/{code} [get]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rawCode := strings.TrimPrefix(r.URL.Path, "/v1/drivers/")
	code, err := strconv.Atoi(rawCode)
	if err != nil || code <= 0 {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("O código do motorista na URL deve ser um inteiro positivo."), 0)
		return
	}

	switch r.Method {
	case http.MethodGet:
		driver, err := h.Service.FindByCode(r.Context(), code)
		h.handleServiceResponse(w, driver, err, http.StatusOK)

	case http.MethodPut:
		var d domain.Driver
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
			return
		}
		d.Code = code // O código da URL manda: identidade imutável
		updated, err := h.Service.Update(r.Context(), d)
		h.handleServiceResponse(w, updated, err, http.StatusOK)

	case http.MethodDelete:
		removed, err := h.Service.Remove(r.Context(), code)
		if err == nil && !removed {
			err = apperror.NewNotFoundError("Motorista com código " + rawCode + " não existe na base de dados.")
		}
		h.handleServiceResponse(w, map[string]bool{"removed": removed}, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
