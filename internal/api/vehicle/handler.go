package vehicle

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// VehicleService define o contrato para as operações de cadastro de veículos.
type VehicleService interface {
	Register(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error)
	Update(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error)
	Remove(ctx context.Context, plate string) (bool, error)
	FindByPlate(ctx context.Context, plate string) (domain.Vehicle, error)
	ListAll(ctx context.Context) ([]domain.Vehicle, error)
	ListSortedByPlate(ctx context.Context, ascending bool) ([]domain.Vehicle, error)
	ListByMake(ctx context.Context, make string) ([]domain.Vehicle, error)
}

// Handler agrupa os métodos de Handler de veículos.
type Handler struct {
	Service VehicleService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc VehicleService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
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
		h.Logger.Error("Erro interno no serviço de veículos:", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// CollectionHandler lida com /v1/vehicles (POST cria, GET lista).
// @Summary Cadastra ou lista veículos
// @Tags vehicles
// @Accept json
// @Produce json
// @Param vehicle body domain.Vehicle true "Veículo (placa, marca, modelo)"
// @Success 201 {object} domain.Vehicle "Veículo criado"
// @Success 200 {array} domain.Vehicle "Lista de veículos"
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos"
// @Failure 409 {object} domain.ErrorResponse "Placa já cadastrada"
// @Router /vehicles [post]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var v domain.Vehicle
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
			return
		}
		created, err := h.Service.Register(r.Context(), v)
		h.handleServiceResponse(w, created, err, http.StatusCreated)

	case http.MethodGet:
		// Filtros opcionais: ?make=Toyota ou ?sort=plate&order=desc
		if make := r.URL.Query().Get("make"); make != "" {
			vehicles, err := h.Service.ListByMake(r.Context(), make)
			h.handleServiceResponse(w, vehicles, err, http.StatusOK)
			return
		}
		if r.URL.Query().Get("sort") == "plate" {
			ascending := r.URL.Query().Get("order") != "desc"
			vehicles, err := h.Service.ListSortedByPlate(r.Context(), ascending)
			h.handleServiceResponse(w, vehicles, err, http.StatusOK)
			return
		}
		vehicles, err := h.Service.ListAll(r.Context())
		h.handleServiceResponse(w, vehicles, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemHandler lida com /v1/vehicles/{plate} (GET busca, PUT atualiza, DELETE exclui).
// @Summary Busca, atualiza ou exclui um veículo pela placa
// @Tags vehicles
// @Produce json
// @Param plate path string true "Placa do veículo"
// @Success 200 {object} domain.Vehicle
// @Failure 404 {object} domain.ErrorResponse "Veículo não encontrado"
// @Failure 422 {object} domain.ErrorResponse "Veículo com utilização em aberto"
// @Router /vehicles/{plate} [get]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	plate := strings.TrimPrefix(r.URL.Path, "/v1/vehicles/")
	if plate == "" {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("A placa do veículo é obrigatória na URL."), 0)
		return
	}

	switch r.Method {
	case http.MethodGet:
		vehicle, err := h.Service.FindByPlate(r.Context(), plate)
		h.handleServiceResponse(w, vehicle, err, http.StatusOK)

	case http.MethodPut:
		var v domain.Vehicle
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
			return
		}
		v.Plate = plate // A placa da URL manda: identidade imutável
		updated, err := h.Service.Update(r.Context(), v)
		h.handleServiceResponse(w, updated, err, http.StatusOK)

	case http.MethodDelete:
		removed, err := h.Service.Remove(r.Context(), plate)
		if err == nil && !removed {
			err = apperror.NewNotFoundError("Veículo com placa " + plate + " não existe na base de dados.")
		}
		h.handleServiceResponse(w, map[string]bool{"removed": removed}, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
