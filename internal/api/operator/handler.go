package operator

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

// OperatorService define o contrato para as operações de cadastro e autenticação de operadores.
type OperatorService interface {
	Register(ctx context.Context, registration domain.OperatorRegistration) (domain.Operator, error)
	Update(ctx context.Context, operator domain.Operator, newPassword string) (domain.Operator, error)
	Remove(ctx context.Context, code int) (bool, error)
	FindByCode(ctx context.Context, code int) (domain.Operator, error)
	ListAll(ctx context.Context) ([]domain.Operator, error)
	Login(ctx context.Context, login, password string) (string, domain.Operator, error)
}

// LoginRequest é o payload de autenticação de operador.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse devolve o token de sessão junto com os dados públicos do operador.
type LoginResponse struct {
	Token    string          `json:"token"`
	Operator domain.Operator `json:"operator"`
}

// updateRequest carrega os dados de atualização; senha vazia mantém a atual.
type updateRequest struct {
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password,omitempty"`
}

// Handler agrupa os métodos de Handler de operadores.
type Handler struct {
	Service OperatorService
	Logger  logger.Logger
}

func NewHandler(svc OperatorService, log logger.Logger) *Handler {
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
		h.Logger.Error("Erro interno no serviço de operadores:", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// RegisterHandler lida com POST /v1/operators/register.
// @Summary Cadastra um novo operador
// @Tags operators
// @Accept json
// @Produce json
// @Param operator body domain.OperatorRegistration true "Dados do operador"
// @Success 201 {object} domain.Operator "Operador criado (sem a senha)"
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos"
// @Failure 409 {object} domain.ErrorResponse "Login já cadastrado"
// @Router /operators/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var registration domain.OperatorRegistration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
		return
	}

	created, err := h.Service.Register(r.Context(), registration)
	h.handleServiceResponse(w, created, err, http.StatusCreated)
}

// LoginHandler lida com POST /v1/operators/login.
// @Summary Autentica um operador e emite o token de sessão
// @Tags operators
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login e senha"
// @Success 200 {object} LoginResponse "Token emitido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /operators/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
		return
	}

	token, op, err := h.Service.Login(r.Context(), req.Login, req.Password)
	h.handleServiceResponse(w, LoginResponse{Token: token, Operator: op}, err, http.StatusOK)
}

// CollectionHandler lida com GET /v1/operators (lista).
// @Summary Lista os operadores cadastrados
// @Tags operators
// @Produce json
// @Success 200 {array} domain.Operator
// @Router /operators [get]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	operators, err := h.Service.ListAll(r.Context())
	h.handleServiceResponse(w, operators, err, http.StatusOK)
}

// ItemHandler lida com /v1/operators/{code} (GET busca, PUT atualiza, DELETE exclui).
// @Summary Busca, atualiza ou exclui um operador pelo código
// @Tags operators
// @Produce json
// @Param code path int true "Código do operador"
// @Success 200 {object} domain.Operator
// @Failure 404 {object} domain.ErrorResponse "Operador não encontrado"
// @Router /operators/{code} [get]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rawCode := strings.TrimPrefix(r.URL.Path, "/v1/operators/")
	code, err := strconv.Atoi(rawCode)
	if err != nil || code <= 0 {
		h.handleServiceResponse(w, nil, apperror.NewValidationError("O código do operador na URL deve ser um inteiro positivo."), 0)
		return
	}

	switch r.Method {
	case http.MethodGet:
		op, err := h.Service.FindByCode(r.Context(), code)
		h.handleServiceResponse(w, op, err, http.StatusOK)

	case http.MethodPut:
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.handleServiceResponse(w, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
			return
		}
		op := domain.Operator{Code: code, Name: req.Name, Login: req.Login}
		updated, err := h.Service.Update(r.Context(), op, req.Password)
		h.handleServiceResponse(w, updated, err, http.StatusOK)

	case http.MethodDelete:
		removed, err := h.Service.Remove(r.Context(), code)
		if err == nil && !removed {
			err = apperror.NewNotFoundError("Operador com código " + rawCode + " não existe na base de dados.")
		}
		h.handleServiceResponse(w, map[string]bool{"removed": removed}, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
