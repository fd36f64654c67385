package utilizationservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
	"gofrota/internal/service/utilizationservice"
)

// MockUtilizationRepository é uma implementação mock da interface UtilizationRepository
type MockUtilizationRepository struct {
	mock.Mock
}

func (m *MockUtilizationRepository) Create(ctx context.Context, u domain.Utilization) (domain.Utilization, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) CloseOpen(ctx context.Context, plate string, returnedBy int, returnedAt time.Time) (domain.Utilization, error) {
	args := m.Called(ctx, plate, returnedBy, returnedAt)
	return args.Get(0).(domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) FindByCode(ctx context.Context, code int) (domain.Utilization, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) FindOpen(ctx context.Context) ([]domain.Utilization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) FindByPlate(ctx context.Context, plate string) ([]domain.Utilization, error) {
	args := m.Called(ctx, plate)
	return args.Get(0).([]domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) FindByPlateAndPeriod(ctx context.Context, plate string, start, end time.Time) ([]domain.Utilization, error) {
	args := m.Called(ctx, plate, start, end)
	return args.Get(0).([]domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) FindByPeriod(ctx context.Context, start, end time.Time) ([]domain.Utilization, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) FindAll(ctx context.Context, sorted, ascending bool) ([]domain.Utilization, error) {
	args := m.Called(ctx, sorted, ascending)
	return args.Get(0).([]domain.Utilization), args.Error(1)
}

func (m *MockUtilizationRepository) CountOpenByPlate(ctx context.Context, plate string) (int64, error) {
	args := m.Called(ctx, plate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUtilizationRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUtilizationRepository) Delete(ctx context.Context, code int) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockVehicleFinder é o mock da dependência sobre o cadastro de veículos
type MockVehicleFinder struct {
	mock.Mock
}

func (m *MockVehicleFinder) FindByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	args := m.Called(ctx, plate)
	return args.Get(0).(domain.Vehicle), args.Error(1)
}

// MockDriverFinder é o mock da dependência sobre o cadastro de motoristas
type MockDriverFinder struct {
	mock.Mock
}

func (m *MockDriverFinder) FindByCode(ctx context.Context, code int) (domain.Driver, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Driver), args.Error(1)
}

// Helper function to create a basic logger
func newTestLogger() logger.Logger {
	return logger.NewLogger("debug")
}

func newService(repo *MockUtilizationRepository, vehicles *MockVehicleFinder, drivers *MockDriverFinder) *utilizationservice.Service {
	return utilizationservice.NewService(repo, vehicles, drivers, newTestLogger())
}

var testOperator = &domain.Operator{Code: 1, Name: "Carlos", Login: "carlos"}

// --- Testes para Checkout ---

func TestCheckout_Success(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockVehicles.On("FindByPlate", mock.Anything, "ABC1234").Return(domain.Vehicle{Plate: "ABC1234"}, nil)
	mockDrivers.On("FindByCode", mock.Anything, 10).Return(domain.Driver{Code: 10}, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u domain.Utilization) bool {
		return u.VehiclePlate == "ABC1234" && u.DriverCode == 10 &&
			u.CheckedOutBy == 1 && u.ReturnedAt == nil && !u.CheckedOutAt.IsZero()
	})).Return(domain.Utilization{Code: 1, VehiclePlate: "ABC1234", DriverCode: 10, CheckedOutBy: 1, CheckedOutAt: time.Now()}, nil)

	ctx := context.Background()
	created, err := svc.Checkout(ctx, "abc1234", 10, testOperator)

	assert.NoError(t, err)
	assert.Equal(t, 1, created.Code)
	assert.True(t, created.Open())
	mockRepo.AssertExpectations(t)
}

func TestCheckout_Fail_NoOperator(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	ctx := context.Background()
	_, err := svc.Checkout(ctx, "ABC1234", 10, nil)

	assert.Error(t, err)
	assert.IsType(t, &apperror.UtilizationError{}, err)
	assert.Contains(t, err.Error(), "autenticação de operador")
	mockVehicles.AssertNotCalled(t, "FindByPlate")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCheckout_Fail_VehicleNotFound(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockVehicles.On("FindByPlate", mock.Anything, "ZZZ9999").Return(domain.Vehicle{}, apperror.NewNotFoundError("não encontrado"))

	ctx := context.Background()
	_, err := svc.Checkout(ctx, "ZZZ9999", 10, testOperator)

	assert.Error(t, err)
	assert.IsType(t, &apperror.UtilizationError{}, err)
	assert.Contains(t, err.Error(), "Veículo não encontrado")
	mockDrivers.AssertNotCalled(t, "FindByCode")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCheckout_Fail_DriverNotFound(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockVehicles.On("FindByPlate", mock.Anything, "ABC1234").Return(domain.Vehicle{Plate: "ABC1234"}, nil)
	mockDrivers.On("FindByCode", mock.Anything, 99).Return(domain.Driver{}, apperror.NewNotFoundError("não encontrado"))

	ctx := context.Background()
	_, err := svc.Checkout(ctx, "ABC1234", 99, testOperator)

	assert.Error(t, err)
	assert.IsType(t, &apperror.UtilizationError{}, err)
	assert.Contains(t, err.Error(), "Motorista não encontrado")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCheckout_Fail_VehicleAlreadyInUse(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockVehicles.On("FindByPlate", mock.Anything, "ABC1234").Return(domain.Vehicle{Plate: "ABC1234"}, nil)
	mockDrivers.On("FindByCode", mock.Anything, 10).Return(domain.Driver{Code: 10}, nil)
	// O repositório detecta a utilização em aberto concorrente no insert
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(domain.Utilization{}, apperror.NewUtilizationError("Veículo já está em uso: ABC1234"))

	ctx := context.Background()
	_, err := svc.Checkout(ctx, "ABC1234", 10, testOperator)

	assert.Error(t, err)
	assert.IsType(t, &apperror.UtilizationError{}, err)
	assert.Contains(t, err.Error(), "já está em uso")
	mockRepo.AssertExpectations(t)
}

func TestCheckout_Fail_InvalidInput(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	ctx := context.Background()

	_, err := svc.Checkout(ctx, "  ", 10, testOperator)
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.Checkout(ctx, "ABC1234", 0, testOperator)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockVehicles.AssertNotCalled(t, "FindByPlate")
}

// --- Testes para Return ---

func TestReturn_Success(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	returnedAt := time.Now()
	closed := domain.Utilization{
		Code: 1, VehiclePlate: "ABC1234", DriverCode: 10,
		CheckedOutAt: returnedAt.Add(-2 * time.Hour), CheckedOutBy: 1,
		ReturnedAt: &returnedAt, ReturnedBy: &testOperator.Code,
	}
	mockRepo.On("CloseOpen", mock.Anything, "ABC1234", 1, mock.AnythingOfType("time.Time")).Return(closed, nil)

	ctx := context.Background()
	result, err := svc.Return(ctx, "abc1234", testOperator)

	assert.NoError(t, err)
	assert.False(t, result.Open())
	assert.NotNil(t, result.ReturnedBy)
	assert.Equal(t, 1, *result.ReturnedBy)
	mockRepo.AssertExpectations(t)
}

func TestReturn_Fail_NoOpenUtilization(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockRepo.On("CloseOpen", mock.Anything, "ABC1234", 1, mock.AnythingOfType("time.Time")).
		Return(domain.Utilization{}, apperror.NewNotFoundError("nenhuma utilização em aberto"))

	ctx := context.Background()
	_, err := svc.Return(ctx, "ABC1234", testOperator)

	assert.Error(t, err)
	assert.IsType(t, &apperror.UtilizationError{}, err)
	assert.Contains(t, err.Error(), "Não há utilização em aberto")
	mockRepo.AssertExpectations(t)
}

func TestReturn_Fail_NoOperator(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	ctx := context.Background()
	_, err := svc.Return(ctx, "ABC1234", &domain.Operator{Code: 0})

	assert.Error(t, err)
	assert.IsType(t, &apperror.UtilizationError{}, err)
	mockRepo.AssertNotCalled(t, "CloseOpen")
}

// --- Testes para consultas ---

func TestFindOnDate_UsesFullDayBounds(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	date := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	wantStart := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	wantEnd := wantStart.Add(24*time.Hour - time.Nanosecond)

	mockRepo.On("FindByPlateAndPeriod", mock.Anything, "ABC1234", wantStart, wantEnd).
		Return([]domain.Utilization{{Code: 1, VehiclePlate: "ABC1234"}}, nil)

	ctx := context.Background()
	results, err := svc.FindOnDate(ctx, "ABC1234", date)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	mockRepo.AssertExpectations(t)
}

func TestListByPeriod_Fail_EndBeforeStart(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	start := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	ctx := context.Background()
	_, err := svc.ListByPeriod(ctx, start, end)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByPeriod")
}

func TestIsVehicleInUse(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockRepo.On("CountOpenByPlate", mock.Anything, "ABC1234").Return(int64(1), nil)
	mockRepo.On("CountOpenByPlate", mock.Anything, "DEF5678").Return(int64(0), nil)

	ctx := context.Background()

	inUse, err := svc.IsVehicleInUse(ctx, "ABC1234")
	assert.NoError(t, err)
	assert.True(t, inUse)

	inUse, err = svc.IsVehicleInUse(ctx, "DEF5678")
	assert.NoError(t, err)
	assert.False(t, inUse)
}

func TestListOpen_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	repoError := errors.New("db error")
	mockRepo.On("FindOpen", mock.Anything).Return([]domain.Utilization{}, repoError)

	ctx := context.Background()
	_, err := svc.ListOpen(ctx)

	assert.Error(t, err)
	assert.Equal(t, repoError, err)
}

// --- Cenário: retirada, devolução e nova retirada do mesmo veículo ---

func TestLifecycle_CheckoutReturnCheckoutAgain(t *testing.T) {
	mockRepo := new(MockUtilizationRepository)
	mockVehicles := new(MockVehicleFinder)
	mockDrivers := new(MockDriverFinder)
	svc := newService(mockRepo, mockVehicles, mockDrivers)

	mockVehicles.On("FindByPlate", mock.Anything, "ABC1234").Return(domain.Vehicle{Plate: "ABC1234"}, nil)
	mockDrivers.On("FindByCode", mock.Anything, 10).Return(domain.Driver{Code: 10}, nil)

	first := domain.Utilization{Code: 1, VehiclePlate: "ABC1234", DriverCode: 10, CheckedOutBy: 1, CheckedOutAt: time.Now()}
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(first, nil).Once()

	returnedAt := time.Now()
	closed := first
	closed.ReturnedAt = &returnedAt
	closed.ReturnedBy = &testOperator.Code
	mockRepo.On("CloseOpen", mock.Anything, "ABC1234", 1, mock.AnythingOfType("time.Time")).Return(closed, nil).Once()

	second := domain.Utilization{Code: 2, VehiclePlate: "ABC1234", DriverCode: 10, CheckedOutBy: 1, CheckedOutAt: time.Now()}
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(second, nil).Once()

	ctx := context.Background()

	u1, err := svc.Checkout(ctx, "ABC1234", 10, testOperator)
	assert.NoError(t, err)
	assert.True(t, u1.Open())

	u1Closed, err := svc.Return(ctx, "ABC1234", testOperator)
	assert.NoError(t, err)
	assert.False(t, u1Closed.Open())

	u2, err := svc.Checkout(ctx, "ABC1234", 10, testOperator)
	assert.NoError(t, err)
	assert.Equal(t, 2, u2.Code)
	assert.True(t, u2.Open())

	mockRepo.AssertExpectations(t)
}
