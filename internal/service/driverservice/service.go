package driverservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// DriverRepository define o contrato que o Serviço de Motoristas espera da camada de Persistência.
type DriverRepository interface {
	Save(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	FindByCode(ctx context.Context, code int) (domain.Driver, error)
	FindByCNH(ctx context.Context, cnh string) (domain.Driver, error)
	FindAll(ctx context.Context) ([]domain.Driver, error)
	FindBySector(ctx context.Context, sector string) ([]domain.Driver, error)
	Update(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	Delete(ctx context.Context, code int) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// Service é a camada de lógica de negócio do cadastro de motoristas.
type Service struct {
	repo   DriverRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Motoristas.
func NewService(repo DriverRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Register cadastra um novo motorista após validações de negócio.
// Ordem das validações: campos obrigatórios, formato da CNH, duplicidade.
// O código é atribuído pela camada de persistência.
func (s *Service) Register(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	s.logger.Debug("Iniciando cadastro de motorista no serviço.", map[string]interface{}{"name": driver.Name})

	if strings.TrimSpace(driver.Name) == "" {
		return domain.Driver{}, apperror.NewValidationError("O nome do motorista é obrigatório.")
	}
	if strings.TrimSpace(driver.CNH) == "" {
		return domain.Driver{}, apperror.NewValidationError("A CNH do motorista é obrigatória.")
	}
	if strings.TrimSpace(driver.Sector) == "" {
		return domain.Driver{}, apperror.NewValidationError("O setor do motorista é obrigatório.")
	}

	if !driver.CNHValid() {
		return domain.Driver{}, apperror.NewValidationError("A CNH deve conter exatamente 11 dígitos numéricos.")
	}

	if err := s.ensureCNHFree(ctx, driver.CNH); err != nil {
		return domain.Driver{}, err
	}

	created, err := s.repo.Save(ctx, driver)
	if err != nil {
		s.logger.Error("Falha ao cadastrar motorista no repositório.", err)
		return domain.Driver{}, err
	}

	s.logger.Info("Motorista cadastrado com sucesso.", map[string]interface{}{"code": created.Code, "name": created.Name})
	return created, nil
}

// Update atualiza os dados de um motorista existente.
// Se a CNH mudou, a duplicidade é verificada contra o novo valor.
func (s *Service) Update(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	s.logger.Debug("Iniciando atualização de motorista no serviço.", map[string]interface{}{"code": driver.Code})

	if driver.Code <= 0 {
		return domain.Driver{}, apperror.NewValidationError("O código do motorista é obrigatório para atualização.")
	}
	if strings.TrimSpace(driver.Name) == "" {
		return domain.Driver{}, apperror.NewValidationError("O nome do motorista é obrigatório.")
	}
	if strings.TrimSpace(driver.Sector) == "" {
		return domain.Driver{}, apperror.NewValidationError("O setor do motorista é obrigatório.")
	}
	if !driver.CNHValid() {
		return domain.Driver{}, apperror.NewValidationError("A CNH deve conter exatamente 11 dígitos numéricos.")
	}

	original, err := s.repo.FindByCode(ctx, driver.Code)
	if err != nil {
		return domain.Driver{}, err // NotFoundError ou DBError do repositório
	}

	if original.CNH != driver.CNH {
		if err := s.ensureCNHFree(ctx, driver.CNH); err != nil {
			return domain.Driver{}, err
		}
	}

	updated, err := s.repo.Update(ctx, driver)
	if err != nil {
		s.logger.Error("Falha ao atualizar motorista no repositório.", err)
		return domain.Driver{}, err
	}

	s.logger.Info("Motorista atualizado com sucesso.", map[string]interface{}{"code": updated.Code})
	return updated, nil
}

// Remove exclui um motorista pelo código. Retorna true se algum registro foi removido.
func (s *Service) Remove(ctx context.Context, code int) (bool, error) {
	if code <= 0 {
		return false, apperror.NewValidationError("O código do motorista é obrigatório.")
	}

	removed, err := s.repo.Delete(ctx, code)
	if err != nil {
		s.logger.Error("Falha ao excluir motorista no repositório.", err)
		return false, err
	}

	s.logger.Info("Exclusão de motorista processada.", map[string]interface{}{"code": code, "removed": removed})
	return removed, nil
}

// FindByCode busca um motorista pelo código.
func (s *Service) FindByCode(ctx context.Context, code int) (domain.Driver, error) {
	if code <= 0 {
		return domain.Driver{}, apperror.NewValidationError("O código do motorista é obrigatório.")
	}
	return s.repo.FindByCode(ctx, code)
}

// FindByCNH busca um motorista pela CNH.
func (s *Service) FindByCNH(ctx context.Context, cnh string) (domain.Driver, error) {
	if !domain.ValidCNH(cnh) {
		return domain.Driver{}, apperror.NewValidationError("A CNH deve conter exatamente 11 dígitos numéricos.")
	}
	return s.repo.FindByCNH(ctx, cnh)
}

// ListAll lista todos os motoristas cadastrados.
func (s *Service) ListAll(ctx context.Context) ([]domain.Driver, error) {
	return s.repo.FindAll(ctx)
}

// ListBySector lista os motoristas de um setor específico.
func (s *Service) ListBySector(ctx context.Context, sector string) ([]domain.Driver, error) {
	if strings.TrimSpace(sector) == "" {
		return nil, apperror.NewValidationError("O setor para filtro é obrigatório.")
	}
	return s.repo.FindBySector(ctx, sector)
}

// ensureCNHFree falha com DuplicateError se já existe motorista com a CNH.
func (s *Service) ensureCNHFree(ctx context.Context, cnh string) error {
	_, err := s.repo.FindByCNH(ctx, cnh)
	if err == nil {
		return apperror.NewDuplicateError(fmt.Sprintf("Já existe um motorista cadastrado com a CNH %s.", cnh))
	}

	var notFound *apperror.NotFoundError
	if errors.As(err, &notFound) {
		return nil // CNH livre
	}
	return err
}
