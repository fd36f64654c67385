package utilizationservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
)

// UtilizationRepository define o contrato que o Serviço de Utilizações espera da camada de Persistência.
// Create e CloseOpen são as transições de estado e devem ser atômicas no repositório.
type UtilizationRepository interface {
	Create(ctx context.Context, u domain.Utilization) (domain.Utilization, error)
	CloseOpen(ctx context.Context, plate string, returnedBy int, returnedAt time.Time) (domain.Utilization, error)
	FindByCode(ctx context.Context, code int) (domain.Utilization, error)
	FindOpen(ctx context.Context) ([]domain.Utilization, error)
	FindByPlate(ctx context.Context, plate string) ([]domain.Utilization, error)
	FindByPlateAndPeriod(ctx context.Context, plate string, start, end time.Time) ([]domain.Utilization, error)
	FindByPeriod(ctx context.Context, start, end time.Time) ([]domain.Utilization, error)
	FindAll(ctx context.Context, sorted, ascending bool) ([]domain.Utilization, error)
	CountOpenByPlate(ctx context.Context, plate string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, code int) (bool, error)
}

// VehicleFinder é a dependência mínima sobre o cadastro de veículos.
type VehicleFinder interface {
	FindByPlate(ctx context.Context, plate string) (domain.Vehicle, error)
}

// DriverFinder é a dependência mínima sobre o cadastro de motoristas.
type DriverFinder interface {
	FindByCode(ctx context.Context, code int) (domain.Driver, error)
}

// Service orquestra o ciclo de vida das utilizações: retirada e devolução
// de veículos por operadores autenticados, além das consultas de histórico.
// É o único escritor das transições de estado de Utilization.
type Service struct {
	repo     UtilizationRepository
	vehicles VehicleFinder
	drivers  DriverFinder
	logger   logger.Logger
	now      func() time.Time // Injetável nos testes
}

// NewService cria e retorna uma nova instância do Serviço de Utilizações.
func NewService(repo UtilizationRepository, vehicles VehicleFinder, drivers DriverFinder, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		vehicles: vehicles,
		drivers:  drivers,
		logger:   log,
		now:      time.Now,
	}
}

// Checkout registra a retirada de um veículo por um motorista.
// Pré-condições, na ordem: operador autenticado presente, veículo existente,
// motorista existente, veículo sem utilização em aberto (a última é garantida
// atomicamente pelo repositório no momento do insert).
func (s *Service) Checkout(ctx context.Context, plate string, driverCode int, operator *domain.Operator) (domain.Utilization, error) {
	if operator == nil || operator.Code <= 0 {
		return domain.Utilization{}, apperror.NewUtilizationError("Operação requer autenticação de operador.")
	}

	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return domain.Utilization{}, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}
	if driverCode <= 0 {
		return domain.Utilization{}, apperror.NewValidationError("O código do motorista é obrigatório.")
	}

	s.logger.Debug("Iniciando retirada de veículo.", map[string]interface{}{
		"plate":       plate,
		"driver_code": driverCode,
		"operator":    operator.Code,
	})

	vehicle, err := s.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Utilization{}, apperror.NewUtilizationError(fmt.Sprintf("Veículo não encontrado: %s", plate))
		}
		return domain.Utilization{}, err
	}

	driver, err := s.drivers.FindByCode(ctx, driverCode)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Utilization{}, apperror.NewUtilizationError(fmt.Sprintf("Motorista não encontrado: %d", driverCode))
		}
		return domain.Utilization{}, err
	}

	utilization := domain.Utilization{
		VehiclePlate: vehicle.Plate,
		DriverCode:   driver.Code,
		CheckedOutAt: s.now(),
		CheckedOutBy: operator.Code,
	}

	created, err := s.repo.Create(ctx, utilization)
	if err != nil {
		// "Veículo já está em uso" chega aqui como UtilizationError do repositório
		s.logger.Warn("Retirada de veículo rejeitada.", map[string]interface{}{"plate": plate, "error": err.Error()})
		return domain.Utilization{}, err
	}

	s.logger.Info("Retirada registrada com sucesso.", map[string]interface{}{
		"code":  created.Code,
		"plate": created.VehiclePlate,
	})
	return created, nil
}

// Return registra a devolução do veículo, fechando a utilização em aberto.
// A utilização é fechada uma única vez; devoluções concorrentes são
// serializadas pelo repositório.
func (s *Service) Return(ctx context.Context, plate string, operator *domain.Operator) (domain.Utilization, error) {
	if operator == nil || operator.Code <= 0 {
		return domain.Utilization{}, apperror.NewUtilizationError("Operação requer autenticação de operador.")
	}

	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return domain.Utilization{}, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}

	s.logger.Debug("Iniciando devolução de veículo.", map[string]interface{}{"plate": plate, "operator": operator.Code})

	closed, err := s.repo.CloseOpen(ctx, plate, operator.Code, s.now())
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Utilization{}, apperror.NewUtilizationError(fmt.Sprintf("Não há utilização em aberto para o veículo: %s", plate))
		}
		s.logger.Error("Falha ao registrar devolução no repositório.", err)
		return domain.Utilization{}, err
	}

	s.logger.Info("Devolução registrada com sucesso.", map[string]interface{}{
		"code":  closed.Code,
		"plate": closed.VehiclePlate,
	})
	return closed, nil
}

// ListOpen lista as utilizações em aberto (veículos ainda em uso).
func (s *Service) ListOpen(ctx context.Context) ([]domain.Utilization, error) {
	return s.repo.FindOpen(ctx)
}

// ListByPlate lista todas as utilizações de um veículo, em ordem crescente
// de data de retirada.
func (s *Service) ListByPlate(ctx context.Context, plate string) ([]domain.Utilization, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}
	return s.repo.FindByPlate(ctx, plate)
}

// FindOnDate lista as utilizações de um veículo cuja retirada ocorreu no dia
// informado (intervalo fechado do início ao último instante do dia).
func (s *Service) FindOnDate(ctx context.Context, plate string, date time.Time) ([]domain.Utilization, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}

	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	return s.repo.FindByPlateAndPeriod(ctx, plate, start, end)
}

// ListByPeriod lista as utilizações cuja retirada caiu no intervalo fechado
// entre o início do primeiro dia e o fim do último dia.
func (s *Service) ListByPeriod(ctx context.Context, startDate, endDate time.Time) ([]domain.Utilization, error) {
	if endDate.Before(startDate) {
		return nil, apperror.NewValidationError("A data final do período não pode ser anterior à inicial.")
	}

	y1, m1, d1 := startDate.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, startDate.Location())
	y2, m2, d2 := endDate.Date()
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, endDate.Location()).Add(24*time.Hour - time.Nanosecond)

	return s.repo.FindByPeriod(ctx, start, end)
}

// ListAll lista todas as utilizações registradas.
func (s *Service) ListAll(ctx context.Context) ([]domain.Utilization, error) {
	return s.repo.FindAll(ctx, false, false)
}

// ListAllSorted lista todas as utilizações ordenadas pela data de retirada.
func (s *Service) ListAllSorted(ctx context.Context, ascending bool) ([]domain.Utilization, error) {
	return s.repo.FindAll(ctx, true, ascending)
}

// FindByCode busca uma utilização pelo código.
func (s *Service) FindByCode(ctx context.Context, code int) (domain.Utilization, error) {
	if code <= 0 {
		return domain.Utilization{}, apperror.NewValidationError("O código da utilização é obrigatório.")
	}
	return s.repo.FindByCode(ctx, code)
}

// IsVehicleInUse informa se o veículo tem utilização em aberto.
func (s *Service) IsVehicleInUse(ctx context.Context, plate string) (bool, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return false, apperror.NewValidationError("A placa do veículo é obrigatória.")
	}

	open, err := s.repo.CountOpenByPlate(ctx, plate)
	if err != nil {
		return false, err
	}
	return open > 0, nil
}

// Remove exclui uma utilização pelo código, por ação explícita do operador.
// Retorna true se algum registro foi removido.
func (s *Service) Remove(ctx context.Context, code int, operator *domain.Operator) (bool, error) {
	if operator == nil || operator.Code <= 0 {
		return false, apperror.NewUtilizationError("Operação requer autenticação de operador.")
	}
	if code <= 0 {
		return false, apperror.NewValidationError("O código da utilização é obrigatório.")
	}

	removed, err := s.repo.Delete(ctx, code)
	if err != nil {
		s.logger.Error("Falha ao excluir utilização no repositório.", err)
		return false, err
	}

	s.logger.Info("Exclusão de utilização processada.", map[string]interface{}{"code": code, "removed": removed, "operator": operator.Code})
	return removed, nil
}
