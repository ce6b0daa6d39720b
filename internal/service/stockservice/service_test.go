package stockservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
	"github.com/Joaovenera/wms-sub004/internal/service/stockservice"
)

// MockStockRepository é uma implementação mock da interface StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) FindByProduct(ctx context.Context, productID string) ([]domain.StockRecord, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.StockRecord), args.Error(1)
}

func (m *MockStockRepository) UpdateStockRecord(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockRecord), args.Error(1)
}

// MockPackagingCatalog é uma implementação mock da interface PackagingCatalog
type MockPackagingCatalog struct {
	mock.Mock
}

func (m *MockPackagingCatalog) GetPackagingsByProduct(ctx domain.Context, productID string) ([]domain.PackagingDefinition, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.PackagingDefinition), args.Error(1)
}

func (m *MockPackagingCatalog) ConvertToBaseUnits(ctx domain.Context, quantity decimal.Decimal, packagingTypeID string) (decimal.Decimal, error) {
	args := m.Called(ctx, quantity, packagingTypeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// catalogFixture monta um catálogo padrão: unidade base, caixa de 20 e pallet de 1440.
type catalogFixture struct {
	productID string
	baseID    string
	boxID     string
	palletID  string
	defs      []domain.PackagingDefinition
}

func newCatalogFixture() catalogFixture {
	f := catalogFixture{
		productID: uuid.New().String(),
		baseID:    uuid.New().String(),
		boxID:     uuid.New().String(),
		palletID:  uuid.New().String(),
	}
	f.defs = []domain.PackagingDefinition{
		{ID: f.baseID, ProductID: f.productID, Name: "Unidade", BaseUnitQuantity: dec("1"), Level: 1, IsBaseUnit: true, IsActive: true},
		{ID: f.boxID, ProductID: f.productID, Name: "Caixa 20", BaseUnitQuantity: dec("20"), Level: 2, IsActive: true},
		{ID: f.palletID, ProductID: f.productID, Name: "Pallet 1440", BaseUnitQuantity: dec("1440"), Level: 3, IsActive: true},
	}
	return f
}

// --- Testes para GetStockConsolidated ---

func TestGetStockConsolidated_SumsHeterogeneousRecords(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	f := newCatalogFixture()
	records := []domain.StockRecord{
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.palletID, Quantity: dec("2"), Version: 1},
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.boxID, Quantity: dec("15"), Version: 1},
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.baseID, Quantity: dec("14"), Version: 1},
	}
	mockRepo.On("FindByProduct", mock.Anything, f.productID).Return(records, nil)
	mockCatalog.On("ConvertToBaseUnits", mock.Anything, dec("2"), f.palletID).Return(dec("2880"), nil)
	mockCatalog.On("ConvertToBaseUnits", mock.Anything, dec("15"), f.boxID).Return(dec("300"), nil)
	mockCatalog.On("ConvertToBaseUnits", mock.Anything, dec("14"), f.baseID).Return(dec("14"), nil)

	ctx := context.Background()
	result, err := svc.GetStockConsolidated(ctx, f.productID)

	assert.NoError(t, err)
	assert.True(t, result.TotalBaseUnits.Equal(dec("3194")), "esperava 3194, obteve %s", result.TotalBaseUnits)
	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestGetStockConsolidated_InvariantUnderReslotting(t *testing.T) {
	// Re-endereçar 1 pallet como 1440 unidades soltas não pode alterar o total.
	mockCatalog := new(MockPackagingCatalog)
	f := newCatalogFixture()

	mockCatalog.On("ConvertToBaseUnits", mock.Anything, dec("1"), f.palletID).Return(dec("1440"), nil)
	mockCatalog.On("ConvertToBaseUnits", mock.Anything, dec("0"), f.palletID).Return(dec("0"), nil)
	mockCatalog.On("ConvertToBaseUnits", mock.Anything, dec("1440"), f.baseID).Return(dec("1440"), nil)

	before := []domain.StockRecord{
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.palletID, Quantity: dec("1"), Version: 1},
	}
	after := []domain.StockRecord{
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.palletID, Quantity: dec("0"), Version: 2},
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.baseID, Quantity: dec("1440"), Version: 1},
	}

	ctx := context.Background()

	repoBefore := new(MockStockRepository)
	repoBefore.On("FindByProduct", mock.Anything, f.productID).Return(before, nil)
	svcBefore := stockservice.NewService(repoBefore, mockCatalog, newTestLogger())
	totalBefore, err := svcBefore.GetStockConsolidated(ctx, f.productID)
	assert.NoError(t, err)

	repoAfter := new(MockStockRepository)
	repoAfter.On("FindByProduct", mock.Anything, f.productID).Return(after, nil)
	svcAfter := stockservice.NewService(repoAfter, mockCatalog, newTestLogger())
	totalAfter, err := svcAfter.GetStockConsolidated(ctx, f.productID)
	assert.NoError(t, err)

	assert.True(t, totalBefore.TotalBaseUnits.Equal(totalAfter.TotalBaseUnits))
}

func TestGetStockConsolidated_Fail_InvalidProductID(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	ctx := context.Background()
	_, err := svc.GetStockConsolidated(ctx, "not-a-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByProduct")
}

// --- Testes para GetStockByPackaging ---

func TestGetStockByPackaging_GroupsAndSorts(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	f := newCatalogFixture()
	// Dois registros na mesma caixa (endereços distintos) devem entrar somados.
	records := []domain.StockRecord{
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.palletID, Quantity: dec("2"), Version: 1},
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.boxID, Quantity: dec("10"), Version: 1},
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.boxID, Quantity: dec("5"), Version: 1},
	}
	mockRepo.On("FindByProduct", mock.Anything, f.productID).Return(records, nil)
	mockCatalog.On("GetPackagingsByProduct", mock.Anything, f.productID).Return(f.defs, nil)

	ctx := context.Background()
	result, err := svc.GetStockByPackaging(ctx, f.productID)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	// Ordenado por level ascendente: caixa (2) antes do pallet (3).
	assert.Equal(t, f.boxID, result[0].PackagingTypeID)
	assert.True(t, result[0].Quantity.Equal(dec("15")))
	assert.Equal(t, f.palletID, result[1].PackagingTypeID)
	assert.True(t, result[1].Quantity.Equal(dec("2")))
	mockRepo.AssertExpectations(t)
}

func TestGetStockByPackaging_Fail_UnknownPackaging(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	f := newCatalogFixture()
	ghostID := uuid.New().String()
	records := []domain.StockRecord{
		{ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: ghostID, Quantity: dec("3"), Version: 1},
	}
	mockRepo.On("FindByProduct", mock.Anything, f.productID).Return(records, nil)
	mockCatalog.On("GetPackagingsByProduct", mock.Anything, f.productID).Return(f.defs, nil)

	ctx := context.Background()
	_, err := svc.GetStockByPackaging(ctx, f.productID)

	// Registro fora do catálogo: erro explícito, nunca um padrão silencioso.
	assert.Error(t, err)
	assert.IsType(t, &apperror.PackagingNotFoundError{}, err)
}

// --- Testes para AdjustStock ---

func TestAdjustStock_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	f := newCatalogFixture()
	adjustment := domain.StockAdjustmentRequest{
		ProductID:       f.productID,
		PackagingTypeID: f.boxID,
		Delta:           dec("-3"),
	}
	updated := domain.StockRecord{
		ID: uuid.New().String(), ProductID: f.productID, PackagingTypeID: f.boxID,
		Quantity: dec("12"), Version: 2,
	}

	mockCatalog.On("GetPackagingsByProduct", mock.Anything, f.productID).Return(f.defs, nil)
	mockRepo.On("UpdateStockRecord", mock.Anything, adjustment).Return(updated, nil)

	ctx := context.Background()
	result, err := svc.AdjustStock(ctx, adjustment)

	assert.NoError(t, err)
	assert.True(t, result.Quantity.Equal(dec("12")))
	assert.Equal(t, 2, result.Version)
	mockRepo.AssertExpectations(t)
}

func TestAdjustStock_Fail_ZeroDelta(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	adjustment := domain.StockAdjustmentRequest{
		ProductID:       uuid.New().String(),
		PackagingTypeID: uuid.New().String(),
		Delta:           decimal.Zero,
	}

	ctx := context.Background()
	_, err := svc.AdjustStock(ctx, adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateStockRecord")
}

func TestAdjustStock_Fail_PackagingNotInProduct(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	f := newCatalogFixture()
	adjustment := domain.StockAdjustmentRequest{
		ProductID:       f.productID,
		PackagingTypeID: uuid.New().String(), // não pertence ao catálogo
		Delta:           dec("5"),
	}
	mockCatalog.On("GetPackagingsByProduct", mock.Anything, f.productID).Return(f.defs, nil)

	ctx := context.Background()
	_, err := svc.AdjustStock(ctx, adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.PackagingNotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateStockRecord")
}

func TestAdjustStock_Fail_OCCConflict(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCatalog := new(MockPackagingCatalog)
	svc := stockservice.NewService(mockRepo, mockCatalog, newTestLogger())

	f := newCatalogFixture()
	adjustment := domain.StockAdjustmentRequest{
		ProductID:       f.productID,
		PackagingTypeID: f.boxID,
		Delta:           dec("1"),
	}
	occErr := apperror.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")

	mockCatalog.On("GetPackagingsByProduct", mock.Anything, f.productID).Return(f.defs, nil)
	mockRepo.On("UpdateStockRecord", mock.Anything, adjustment).Return(domain.StockRecord{}, occErr)

	ctx := context.Background()
	_, err := svc.AdjustStock(ctx, adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "concorrência")
	mockRepo.AssertExpectations(t)
}
