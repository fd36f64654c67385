package driverservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gofrota/internal/domain"
	apperror "gofrota/internal/errors"
	"gofrota/internal/pkg/logger"
	"gofrota/internal/service/driverservice"
)

// MockDriverRepository é uma implementação mock da interface DriverRepository
type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) Save(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	args := m.Called(ctx, driver)
	return args.Get(0).(domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) FindByCode(ctx context.Context, code int) (domain.Driver, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) FindByCNH(ctx context.Context, cnh string) (domain.Driver, error) {
	args := m.Called(ctx, cnh)
	return args.Get(0).(domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) FindAll(ctx context.Context) ([]domain.Driver, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) FindBySector(ctx context.Context, sector string) ([]domain.Driver, error) {
	args := m.Called(ctx, sector)
	return args.Get(0).([]domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) Update(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	args := m.Called(ctx, driver)
	return args.Get(0).(domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) Delete(ctx context.Context, code int) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriverRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Helper function to create a basic logger
func newTestLogger() logger.Logger {
	return logger.NewLogger("debug")
}

// --- Testes para Register ---

func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	newDriver := domain.Driver{Name: "João da Silva", CNH: "12345678901", Sector: "Logística"}
	created := newDriver
	created.Code = 1

	mockRepo.On("FindByCNH", mock.Anything, "12345678901").Return(domain.Driver{}, apperror.NewNotFoundError("não encontrado"))
	mockRepo.On("Save", mock.Anything, newDriver).Return(created, nil)

	ctx := context.Background()
	result, err := svc.Register(ctx, newDriver)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Code)
	mockRepo.AssertExpectations(t)
}

func TestRegister_Fail_InvalidCNH(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	invalid := domain.Driver{Name: "João", CNH: "1234567890a", Sector: "Logística"}

	ctx := context.Background()
	_, err := svc.Register(ctx, invalid)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "11 dígitos")
	mockRepo.AssertNotCalled(t, "Save")
}

func TestRegister_Fail_MissingName(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	ctx := context.Background()
	_, err := svc.Register(ctx, domain.Driver{Name: " ", CNH: "12345678901", Sector: "Logística"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestRegister_Fail_DuplicateCNH(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	existing := domain.Driver{Code: 7, Name: "Maria", CNH: "12345678901", Sector: "Entregas"}
	mockRepo.On("FindByCNH", mock.Anything, "12345678901").Return(existing, nil)

	ctx := context.Background()
	_, err := svc.Register(ctx, domain.Driver{Name: "João", CNH: "12345678901", Sector: "Logística"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.DuplicateError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

// --- Testes para Update ---

func TestUpdate_Success_SameCNH(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	driver := domain.Driver{Code: 1, Name: "João da Silva", CNH: "12345678901", Sector: "Entregas"}
	mockRepo.On("FindByCode", mock.Anything, 1).Return(driver, nil)
	mockRepo.On("Update", mock.Anything, driver).Return(driver, nil)

	ctx := context.Background()
	result, err := svc.Update(ctx, driver)

	assert.NoError(t, err)
	assert.Equal(t, "Entregas", result.Sector)
	// CNH não mudou: nenhuma checagem de duplicidade
	mockRepo.AssertNotCalled(t, "FindByCNH")
	mockRepo.AssertExpectations(t)
}

func TestUpdate_Fail_NewCNHAlreadyTaken(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	original := domain.Driver{Code: 1, Name: "João", CNH: "12345678901", Sector: "Logística"}
	updated := domain.Driver{Code: 1, Name: "João", CNH: "98765432100", Sector: "Logística"}
	other := domain.Driver{Code: 2, Name: "Maria", CNH: "98765432100", Sector: "Entregas"}

	mockRepo.On("FindByCode", mock.Anything, 1).Return(original, nil)
	mockRepo.On("FindByCNH", mock.Anything, "98765432100").Return(other, nil)

	ctx := context.Background()
	_, err := svc.Update(ctx, updated)

	assert.Error(t, err)
	assert.IsType(t, &apperror.DuplicateError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUpdate_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	driver := domain.Driver{Code: 99, Name: "Fantasma", CNH: "12345678901", Sector: "Logística"}
	mockRepo.On("FindByCode", mock.Anything, 99).Return(domain.Driver{}, apperror.NewNotFoundError("não encontrado"))

	ctx := context.Background()
	_, err := svc.Update(ctx, driver)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

// --- Testes para Remove e consultas ---

func TestRemove_Success(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("Delete", mock.Anything, 1).Return(true, nil)

	ctx := context.Background()
	removed, err := svc.Remove(ctx, 1)

	assert.NoError(t, err)
	assert.True(t, removed)
	mockRepo.AssertExpectations(t)
}

func TestRemove_Fail_InvalidCode(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	ctx := context.Background()
	_, err := svc.Remove(ctx, 0)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Delete")
}

func TestFindByCNH_Fail_InvalidFormat(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	ctx := context.Background()
	_, err := svc.FindByCNH(ctx, "123")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByCNH")
}

func TestListBySector_Success(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	expected := []domain.Driver{{Code: 1, Name: "João", CNH: "12345678901", Sector: "Logística"}}
	mockRepo.On("FindBySector", mock.Anything, "Logística").Return(expected, nil)

	ctx := context.Background()
	results, err := svc.ListBySector(ctx, "Logística")

	assert.NoError(t, err)
	assert.Equal(t, expected, results)
	mockRepo.AssertExpectations(t)
}

func TestListAll_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockDriverRepository)
	svc := driverservice.NewService(mockRepo, newTestLogger())

	repoError := errors.New("db error")
	mockRepo.On("FindAll", mock.Anything).Return([]domain.Driver{}, repoError)

	ctx := context.Background()
	_, err := svc.ListAll(ctx)

	assert.Error(t, err)
	assert.Equal(t, repoError, err)
	mockRepo.AssertExpectations(t)
}
