package operatorservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// OperatorRepository define o contrato que o Serviço de Operadores espera da camada de Persistência.
type OperatorRepository interface {
	Save(ctx context.Context, operator domain.Operator) (domain.Operator, error)
	FindByCode(ctx context.Context, code int) (domain.Operator, error)
	FindByLogin(ctx context.Context, login string) (domain.Operator, error)
	FindAll(ctx context.Context) ([]domain.Operator, error)
	Update(ctx context.Context, operator domain.Operator) (domain.Operator, error)
	Delete(ctx context.Context, code int) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(operatorCode int, login string) (string, error)
}

// Service é a camada de lógica de negócio de operadores: cadastro e autenticação.
type Service struct {
	repo     OperatorRepository
	tokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do Serviço de Operadores.
func NewService(repo OperatorRepository, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{repo: repo, tokenSvc: tokenSvc, logger: log}
}

// Register cadastra um novo operador no sistema.
// A senha é armazenada apenas como hash bcrypt.
func (s *Service) Register(ctx context.Context, registration domain.OperatorRegistration) (domain.Operator, error) {
	s.logger.Debug("Iniciando cadastro de operador no serviço.", map[string]interface{}{"login": registration.Login})

	if strings.TrimSpace(registration.Name) == "" {
		return domain.Operator{}, apperror.NewValidationError("O nome do operador é obrigatório.")
	}
	if strings.TrimSpace(registration.Login) == "" {
		return domain.Operator{}, apperror.NewValidationError("O login do operador é obrigatório.")
	}
	if len(registration.Password) < domain.MinPasswordLen {
		return domain.Operator{}, apperror.NewValidationError(fmt.Sprintf("A senha deve ter no mínimo %d caracteres.", domain.MinPasswordLen))
	}

	if err := s.ensureLoginFree(ctx, registration.Login); err != nil {
		return domain.Operator{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Operator{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newOperator := domain.Operator{
		Name:         strings.TrimSpace(registration.Name),
		Login:        strings.TrimSpace(registration.Login),
		PasswordHash: string(hashedPassword),
	}

	created, err := s.repo.Save(ctx, newOperator)
	if err != nil {
		s.logger.Error("Falha ao cadastrar operador no repositório.", err)
		return domain.Operator{}, err
	}

	s.logger.Info("Operador cadastrado com sucesso.", map[string]interface{}{"code": created.Code, "login": created.Login})
	return created, nil
}

// Update atualiza os dados de um operador existente.
// Se o login mudou, a duplicidade é verificada contra o novo valor.
// newPassword vazio mantém a senha atual.
func (s *Service) Update(ctx context.Context, operator domain.Operator, newPassword string) (domain.Operator, error) {
	s.logger.Debug("Iniciando atualização de operador no serviço.", map[string]interface{}{"code": operator.Code})

	if operator.Code <= 0 {
		return domain.Operator{}, apperror.NewValidationError("O código do operador é obrigatório para atualização.")
	}
	if strings.TrimSpace(operator.Name) == "" {
		return domain.Operator{}, apperror.NewValidationError("O nome do operador é obrigatório.")
	}
	if strings.TrimSpace(operator.Login) == "" {
		return domain.Operator{}, apperror.NewValidationError("O login do operador é obrigatório.")
	}

	original, err := s.repo.FindByCode(ctx, operator.Code)
	if err != nil {
		return domain.Operator{}, err // NotFoundError ou DBError do repositório
	}

	if original.Login != operator.Login {
		if err := s.ensureLoginFree(ctx, operator.Login); err != nil {
			return domain.Operator{}, err
		}
	}

	if newPassword != "" {
		if len(newPassword) < domain.MinPasswordLen {
			return domain.Operator{}, apperror.NewValidationError(fmt.Sprintf("A senha deve ter no mínimo %d caracteres.", domain.MinPasswordLen))
		}
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return domain.Operator{}, apperror.NewInternalError("Falha ao gerar hash da senha.", hashErr)
		}
		operator.PasswordHash = string(hashedPassword)
	} else {
		operator.PasswordHash = original.PasswordHash
	}

	updated, err := s.repo.Update(ctx, operator)
	if err != nil {
		s.logger.Error("Falha ao atualizar operador no repositório.", err)
		return domain.Operator{}, err
	}

	s.logger.Info("Operador atualizado com sucesso.", map[string]interface{}{"code": updated.Code})
	return updated, nil
}

// Remove exclui um operador pelo código. Retorna true se algum registro foi removido.
func (s *Service) Remove(ctx context.Context, code int) (bool, error) {
	if code <= 0 {
		return false, apperror.NewValidationError("O código do operador é obrigatório.")
	}

	removed, err := s.repo.Delete(ctx, code)
	if err != nil {
		s.logger.Error("Falha ao excluir operador no repositório.", err)
		return false, err
	}

	s.logger.Info("Exclusão de operador processada.", map[string]interface{}{"code": code, "removed": removed})
	return removed, nil
}

// FindByCode busca um operador pelo código.
func (s *Service) FindByCode(ctx context.Context, code int) (domain.Operator, error) {
	if code <= 0 {
		return domain.Operator{}, apperror.NewValidationError("O código do operador é obrigatório.")
	}
	return s.repo.FindByCode(ctx, code)
}

// FindByLogin busca um operador pelo login.
func (s *Service) FindByLogin(ctx context.Context, login string) (domain.Operator, error) {
	if strings.TrimSpace(login) == "" {
		return domain.Operator{}, apperror.NewValidationError("O login do operador é obrigatório.")
	}
	return s.repo.FindByLogin(ctx, login)
}

// ListAll lista todos os operadores cadastrados.
func (s *Service) ListAll(ctx context.Context) ([]domain.Operator, error) {
	return s.repo.FindAll(ctx)
}

// Authenticate valida as credenciais e retorna o operador autenticado.
// A mensagem de falha é sempre a mesma, independente de o login existir ou
// de a senha estar errada, para não permitir enumeração de usuários.
func (s *Service) Authenticate(ctx context.Context, login, password string) (domain.Operator, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return domain.Operator{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	operator, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Operator{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.Operator{}, err // DBError ou similar
	}

	if !s.ValidateCredentials(&operator, password) {
		return domain.Operator{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	return operator, nil
}

// ValidateCredentials compara a senha informada com o hash do operador.
// Comparação pura, sem lookup: retorna false para qualquer entrada nula/vazia.
func (s *Service) ValidateCredentials(operator *domain.Operator, password string) bool {
	if operator == nil || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)) == nil
}

// Login autentica um operador e emite a credencial de sessão (JWT) que
// habilita as operações de retirada e devolução.
func (s *Service) Login(ctx context.Context, login, password string) (string, domain.Operator, error) {
	operator, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return "", domain.Operator{}, err
	}

	tokenString, err := s.tokenSvc.GenerateToken(operator.Code, operator.Login)
	if err != nil {
		return "", domain.Operator{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, operator, nil
}

// ensureLoginFree falha com DuplicateError se já existe operador com o login.
func (s *Service) ensureLoginFree(ctx context.Context, login string) error {
	_, err := s.repo.FindByLogin(ctx, login)
	if err == nil {
		return apperror.NewDuplicateError(fmt.Sprintf("Já existe um operador cadastrado com o login %s.", login))
	}

	var notFound *apperror.NotFoundError
	if errors.As(err, &notFound) {
		return nil // Login livre
	}
	return err
}
