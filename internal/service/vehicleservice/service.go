package vehicleservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// VehicleRepository define o contrato que o Serviço de Veículos espera da camada de Persistência.
type VehicleRepository interface {
	Save(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (domain.Vehicle, error)
	FindAll(ctx context.Context, sortByPlate, ascending bool) ([]domain.Vehicle, error)
	FindByMake(ctx context.Context, make string) ([]domain.Vehicle, error)
	Update(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error)
	Delete(ctx context.Context, plate string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// UtilizationChecker informa se um veículo tem utilização em aberto.
// É a dependência mínima necessária para proteger a exclusão de veículos.
type UtilizationChecker interface {
	CountOpenByPlate(ctx context.Context, plate string) (int64, error)
}

// Service é a camada de lógica de negócio do cadastro de veículos.
type Service struct {
	repo         VehicleRepository
	utilizations UtilizationChecker
	logger       logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Veículos.
func NewService(repo VehicleRepository, utilizations UtilizationChecker, log logger.Logger) *Service {
	return &Service{repo: repo, utilizations: utilizations, logger: log}
}

// Register cadastra um novo veículo após validações de negócio.
// Ordem das validações: campos obrigatórios, formato da placa, duplicidade.
func (s *Service) Register(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	s.logger.Debug("Iniciando cadastro de veículo no serviço.", map[string]interface{}{"plate": vehicle.Plate})

	if strings.TrimSpace(vehicle.Plate) == "" {
		return domain.Vehicle{}, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}
	if strings.TrimSpace(vehicle.Make) == "" {
		return domain.Vehicle{}, apperror.NewValidationError("A marca do veículo é obrigatória.")
	}
	if strings.TrimSpace(vehicle.Model) == "" {
		return domain.Vehicle{}, apperror.NewValidationError("O modelo do veículo é obrigatório.")
	}

	vehicle.Plate = domain.NormalizePlate(vehicle.Plate)
	if !vehicle.PlateValid() {
		return domain.Vehicle{}, apperror.NewValidationError("Placa inválida. Use o formato ABC-1234 ou ABC1D23.")
	}

	if err := s.ensurePlateFree(ctx, vehicle.Plate); err != nil {
		return domain.Vehicle{}, err
	}

	created, err := s.repo.Save(ctx, vehicle)
	if err != nil {
		s.logger.Error("Falha ao cadastrar veículo no repositório.", err)
		return domain.Vehicle{}, err
	}

	s.logger.Info("Veículo cadastrado com sucesso.", map[string]interface{}{"plate": created.Plate})
	return created, nil
}

// Update atualiza marca e modelo de um veículo existente.
// A placa é a identidade do veículo e não pode ser alterada.
func (s *Service) Update(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	s.logger.Debug("Iniciando atualização de veículo no serviço.", map[string]interface{}{"plate": vehicle.Plate})

	if strings.TrimSpace(vehicle.Plate) == "" {
		return domain.Vehicle{}, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}
	if strings.TrimSpace(vehicle.Make) == "" {
		return domain.Vehicle{}, apperror.NewValidationError("A marca do veículo é obrigatória.")
	}
	if strings.TrimSpace(vehicle.Model) == "" {
		return domain.Vehicle{}, apperror.NewValidationError("O modelo do veículo é obrigatório.")
	}

	vehicle.Plate = domain.NormalizePlate(vehicle.Plate)
	if !vehicle.PlateValid() {
		return domain.Vehicle{}, apperror.NewValidationError("Placa inválida. Use o formato ABC-1234 ou ABC1D23.")
	}

	// Garante que o veículo existe antes de sobrescrever
	if _, err := s.repo.FindByPlate(ctx, vehicle.Plate); err != nil {
		return domain.Vehicle{}, err // NotFoundError ou DBError do repositório
	}

	updated, err := s.repo.Update(ctx, vehicle)
	if err != nil {
		s.logger.Error("Falha ao atualizar veículo no repositório.", err)
		return domain.Vehicle{}, err
	}

	s.logger.Info("Veículo atualizado com sucesso.", map[string]interface{}{"plate": updated.Plate})
	return updated, nil
}

// Remove exclui um veículo pela placa. A exclusão é negada enquanto houver
// utilização em aberto referenciando o veículo.
func (s *Service) Remove(ctx context.Context, plate string) (bool, error) {
	plate = domain.NormalizePlate(plate)
	s.logger.Debug("Iniciando exclusão de veículo no serviço.", map[string]interface{}{"plate": plate})

	open, err := s.utilizations.CountOpenByPlate(ctx, plate)
	if err != nil {
		s.logger.Error("Falha ao verificar utilizações em aberto do veículo.", err)
		return false, err
	}
	if open > 0 {
		return false, apperror.NewUtilizationError(fmt.Sprintf("Veículo %s possui utilização em aberto e não pode ser excluído.", plate))
	}

	removed, err := s.repo.Delete(ctx, plate)
	if err != nil {
		s.logger.Error("Falha ao excluir veículo no repositório.", err)
		return false, err
	}

	s.logger.Info("Exclusão de veículo processada.", map[string]interface{}{"plate": plate, "removed": removed})
	return removed, nil
}

// FindByPlate busca um veículo pela placa.
func (s *Service) FindByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return domain.Vehicle{}, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}
	return s.repo.FindByPlate(ctx, plate)
}

// ListAll lista todos os veículos cadastrados.
func (s *Service) ListAll(ctx context.Context) ([]domain.Vehicle, error) {
	return s.repo.FindAll(ctx, false, false)
}

// ListSortedByPlate lista os veículos ordenados pela placa.
func (s *Service) ListSortedByPlate(ctx context.Context, ascending bool) ([]domain.Vehicle, error) {
	return s.repo.FindAll(ctx, true, ascending)
}

// ListByMake lista os veículos de uma marca específica.
func (s *Service) ListByMake(ctx context.Context, make string) ([]domain.Vehicle, error) {
	if strings.TrimSpace(make) == "" {
		return nil, apperror.NewValidationError("A marca para filtro é obrigatória.")
	}
	return s.repo.FindByMake(ctx, make)
}

// ensurePlateFree falha com DuplicateError se já existe veículo com a placa.
func (s *Service) ensurePlateFree(ctx context.Context, plate string) error {
	_, err := s.repo.FindByPlate(ctx, plate)
	if err == nil {
		return apperror.NewDuplicateError(fmt.Sprintf("Já existe um veículo cadastrado com a placa %s.", plate))
	}

	var notFound *apperror.NotFoundError
	if errors.As(err, &notFound) {
		return nil // Placa livre
	}
	return err // DBError ou similar
}
