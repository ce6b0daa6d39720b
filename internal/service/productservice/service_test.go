package productservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
	"github.com/Joaovenera/wms-sub004/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

// --- Testes para CreateProduct ---

func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	product := domain.Product{Name: "Refrigerante Lata 350ml", SKU: "REF-350"}

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.Name == product.Name && p.SKU == product.SKU && p.ID != "" && p.IsActive
	})).Return(domain.Product{ID: uuid.New().String(), Name: product.Name, SKU: product.SKU, IsActive: true}, nil)

	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, product)

	assert.NoError(t, err)
	assert.NotEqual(t, "", created.ID)
	assert.Equal(t, "REF-350", created.SKU)
	mockRepo.AssertExpectations(t)
}

func TestCreateProduct_Fail_MissingFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, domain.Product{Name: "  ", SKU: ""})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

// --- Testes para GetProductByID ---

func TestGetProductByID_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	productID := uuid.New().String()
	expected := domain.Product{ID: productID, Name: "Refrigerante", SKU: "REF-350", IsActive: true}
	mockRepo.On("FindByID", mock.Anything, productID).Return(expected, nil)

	ctx := context.Background()
	result, err := svc.GetProductByID(ctx, productID)

	assert.NoError(t, err)
	assert.Equal(t, expected.ID, result.ID)
	mockRepo.AssertExpectations(t)
}

func TestGetProductByID_Fail_InvalidID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	ctx := context.Background()
	_, err := svc.GetProductByID(ctx, "invalid-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "UUID válido")
	mockRepo.AssertNotCalled(t, "FindByID")
}

func TestGetProductByID_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	productID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, productID).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado"))

	ctx := context.Background()
	_, err := svc.GetProductByID(ctx, productID)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// --- Testes para ListProducts ---

func TestListProducts_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	filter := domain.ProductFilter{ActiveOnly: true, Limit: 10}
	expected := []domain.Product{
		{ID: uuid.New().String(), Name: "P1", SKU: "SKU-1", IsActive: true},
		{ID: uuid.New().String(), Name: "P2", SKU: "SKU-2", IsActive: true},
	}
	mockRepo.On("FindAll", mock.Anything, filter).Return(expected, nil)

	ctx := context.Background()
	results, err := svc.ListProducts(ctx, filter)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	mockRepo.AssertExpectations(t)
}

func TestListProducts_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, newTestLogger())

	filter := domain.ProductFilter{}
	mockRepo.On("FindAll", mock.Anything, filter).
		Return([]domain.Product{}, apperror.NewDBError("Falha ao listar", assert.AnError))

	ctx := context.Background()
	_, err := svc.ListProducts(ctx, filter)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockRepo.AssertExpectations(t)
}
