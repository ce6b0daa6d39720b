package pickingservice_test

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
	"github.com/Joaovenera/wms-sub004/internal/service/pickingservice"
)

// MockPackagingCatalog é uma implementação mock da interface PackagingCatalog
type MockPackagingCatalog struct {
	mock.Mock
}

func (m *MockPackagingCatalog) GetPackagingsByProduct(ctx domain.Context, productID string) ([]domain.PackagingDefinition, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.PackagingDefinition), args.Error(1)
}

// MockStockReader é uma implementação mock da interface StockReader
type MockStockReader struct {
	mock.Mock
}

func (m *MockStockReader) GetStockByPackaging(ctx domain.Context, productID string) ([]domain.StockByPackaging, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.StockByPackaging), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// level é um atalho para montar um nível de catálogo com estoque disponível.
type level struct {
	id        string
	name      string
	baseQty   string
	isBase    bool
	available string
}

func newOptimizer(t *testing.T, productID string, levels []level) *pickingservice.Service {
	t.Helper()

	var defs []domain.PackagingDefinition
	var stock []domain.StockByPackaging
	for i, l := range levels {
		defs = append(defs, domain.PackagingDefinition{
			ID: l.id, ProductID: productID, Name: l.name,
			BaseUnitQuantity: dec(l.baseQty), Level: i + 1,
			IsBaseUnit: l.isBase, IsActive: true,
		})
		stock = append(stock, domain.StockByPackaging{
			PackagingTypeID: l.id, PackagingName: l.name,
			Level: i + 1, BaseUnitQuantity: dec(l.baseQty), Quantity: dec(l.available),
		})
	}

	mockCatalog := new(MockPackagingCatalog)
	mockStock := new(MockStockReader)
	mockCatalog.On("GetPackagingsByProduct", mock.Anything, productID).Return(defs, nil)
	mockStock.On("GetStockByPackaging", mock.Anything, productID).Return(stock, nil)

	return pickingservice.NewService(mockCatalog, mockStock, newTestLogger())
}

// assertConservation confere as invariantes aritméticas de qualquer plano.
func assertConservation(t *testing.T, plan domain.PickPlan) {
	t.Helper()

	sum := decimal.Zero
	for _, line := range plan.Lines {
		sum = sum.Add(line.BaseUnitValue)
	}
	assert.True(t, sum.Equal(plan.FulfilledBaseUnits),
		"Σ base_unit_value (%s) != fulfilled (%s)", sum, plan.FulfilledBaseUnits)
	assert.True(t, plan.FulfilledBaseUnits.Add(plan.ResidualBaseUnits).Equal(plan.RequestedBaseUnits),
		"fulfilled + residual != requested")
	assert.True(t, plan.FulfilledBaseUnits.Cmp(plan.RequestedBaseUnits) <= 0)
}

// --- Cenários literais ---

func TestOptimize_ExactPallet(t *testing.T) {
	productID := uuid.New().String()
	palletID := uuid.New().String()
	svc := newOptimizer(t, productID, []level{
		{id: uuid.New().String(), name: "Unidade", baseQty: "1", isBase: true, available: "0"},
		{id: uuid.New().String(), name: "Caixa 12", baseQty: "12", available: "0"},
		{id: palletID, name: "Pallet 1440", baseQty: "1440", available: "2"},
	})

	plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("1440"))

	assert.NoError(t, err)
	assert.Len(t, plan.Lines, 1)
	assert.Equal(t, palletID, plan.Lines[0].PackagingTypeID)
	assert.True(t, plan.Lines[0].UnitsUsed.Equal(dec("1")))
	assert.True(t, plan.FulfilledBaseUnits.Equal(dec("1440")))
	assert.True(t, plan.ResidualBaseUnits.IsZero())
	assert.True(t, plan.ShouldFulfill)
	assertConservation(t, plan)
}

func TestOptimize_PalletPlusBox(t *testing.T) {
	// Pedido de 156: 1 pallet de 144 + 1 caixa de 12.
	productID := uuid.New().String()
	boxID := uuid.New().String()
	palletID := uuid.New().String()
	svc := newOptimizer(t, productID, []level{
		{id: boxID, name: "Caixa 12", baseQty: "12", available: "20"},
		{id: palletID, name: "Pallet 144", baseQty: "144", available: "1"},
	})

	plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("156"))

	assert.NoError(t, err)
	assert.Len(t, plan.Lines, 2)
	assert.Equal(t, palletID, plan.Lines[0].PackagingTypeID)
	assert.True(t, plan.Lines[0].UnitsUsed.Equal(dec("1")))
	assert.Equal(t, boxID, plan.Lines[1].PackagingTypeID)
	assert.True(t, plan.Lines[1].UnitsUsed.Equal(dec("1")))
	assert.True(t, plan.FulfilledBaseUnits.Equal(dec("156")))
	assert.True(t, plan.ResidualBaseUnits.IsZero())
	assert.True(t, plan.ShouldFulfill)
	assertConservation(t, plan)
}

func TestOptimize_InsufficientStockReturnsResidual(t *testing.T) {
	// Pedido de 5000 contra 314 disponíveis: consome tudo, residual 4686,
	// should_fulfill = false. Não é erro.
	productID := uuid.New().String()
	svc := newOptimizer(t, productID, []level{
		{id: uuid.New().String(), name: "Unidade", baseQty: "1", isBase: true, available: "50"},
		{id: uuid.New().String(), name: "Caixa 12", baseQty: "12", available: "10"},
		{id: uuid.New().String(), name: "Display 144", baseQty: "144", available: "1"},
	})

	plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("5000"))

	assert.NoError(t, err)
	assert.Len(t, plan.Lines, 3)
	assert.True(t, plan.FulfilledBaseUnits.Equal(dec("314")), "esperava 314, obteve %s", plan.FulfilledBaseUnits)
	assert.True(t, plan.ResidualBaseUnits.Equal(dec("4686")))
	assert.False(t, plan.ShouldFulfill)
	assertConservation(t, plan)
}

func TestOptimize_ZeroRequest(t *testing.T) {
	productID := uuid.New().String()
	mockCatalog := new(MockPackagingCatalog)
	mockStock := new(MockStockReader)
	svc := pickingservice.NewService(mockCatalog, mockStock, newTestLogger())

	plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, decimal.Zero)

	// Pedido zero é trivialmente atendido, sem sequer consultar o estoque.
	assert.NoError(t, err)
	assert.Empty(t, plan.Lines)
	assert.True(t, plan.FulfilledBaseUnits.IsZero())
	assert.True(t, plan.ResidualBaseUnits.IsZero())
	assert.True(t, plan.ShouldFulfill)
	mockCatalog.AssertNotCalled(t, "GetPackagingsByProduct")
	mockStock.AssertNotCalled(t, "GetStockByPackaging")
}

func TestOptimize_Fail_NegativeRequest(t *testing.T) {
	productID := uuid.New().String()
	mockCatalog := new(MockPackagingCatalog)
	mockStock := new(MockStockReader)
	svc := pickingservice.NewService(mockCatalog, mockStock, newTestLogger())

	_, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("-5"))

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidQuantityError{}, err)
	mockStock.AssertNotCalled(t, "GetStockByPackaging")
}

func TestOptimize_Fail_InvalidProductID(t *testing.T) {
	mockCatalog := new(MockPackagingCatalog)
	mockStock := new(MockStockReader)
	svc := pickingservice.NewService(mockCatalog, mockStock, newTestLogger())

	_, err := svc.OptimizePickingByPackaging(context.Background(), "not-a-uuid", dec("10"))

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// --- Propriedades do otimizador ---

func TestOptimize_BaseUnitAbsorbsFraction(t *testing.T) {
	// A unidade base é o único nível divisível: cobre o resto fracionário.
	productID := uuid.New().String()
	baseID := uuid.New().String()
	boxID := uuid.New().String()
	svc := newOptimizer(t, productID, []level{
		{id: baseID, name: "Unidade", baseQty: "1", isBase: true, available: "100"},
		{id: boxID, name: "Caixa 12", baseQty: "12", available: "10"},
	})

	plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("25.5"))

	assert.NoError(t, err)
	assert.Len(t, plan.Lines, 2)
	assert.Equal(t, boxID, plan.Lines[0].PackagingTypeID)
	assert.True(t, plan.Lines[0].UnitsUsed.Equal(dec("2"))) // 24 em caixas inteiras
	assert.Equal(t, baseID, plan.Lines[1].PackagingTypeID)
	assert.True(t, plan.Lines[1].UnitsUsed.Equal(dec("1.5")))
	assert.True(t, plan.ShouldFulfill)
	assertConservation(t, plan)
}

func TestOptimize_SkipsInactiveLevels(t *testing.T) {
	productID := uuid.New().String()
	baseID := uuid.New().String()
	palletID := uuid.New().String()

	defs := []domain.PackagingDefinition{
		{ID: baseID, ProductID: productID, Name: "Unidade", BaseUnitQuantity: dec("1"), Level: 1, IsBaseUnit: true, IsActive: true},
		{ID: palletID, ProductID: productID, Name: "Pallet 144", BaseUnitQuantity: dec("144"), Level: 2, IsActive: false},
	}
	stock := []domain.StockByPackaging{
		{PackagingTypeID: baseID, PackagingName: "Unidade", Level: 1, BaseUnitQuantity: dec("1"), Quantity: dec("200")},
		{PackagingTypeID: palletID, PackagingName: "Pallet 144", Level: 2, BaseUnitQuantity: dec("144"), Quantity: dec("5")},
	}

	mockCatalog := new(MockPackagingCatalog)
	mockStock := new(MockStockReader)
	mockCatalog.On("GetPackagingsByProduct", mock.Anything, productID).Return(defs, nil)
	mockStock.On("GetStockByPackaging", mock.Anything, productID).Return(stock, nil)
	svc := pickingservice.NewService(mockCatalog, mockStock, newTestLogger())

	plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("150"))

	// O pallet está inativo: só a unidade base entra no plano.
	assert.NoError(t, err)
	assert.Len(t, plan.Lines, 1)
	assert.Equal(t, baseID, plan.Lines[0].PackagingTypeID)
	assert.True(t, plan.Lines[0].UnitsUsed.Equal(dec("150")))
	assertConservation(t, plan)
}

func TestOptimize_Monotonicity(t *testing.T) {
	// Aumentar o pedido (com estoque fixo) nunca diminui o atendido.
	productID := uuid.New().String()
	build := func() *pickingservice.Service {
		return newOptimizer(t, productID, []level{
			{id: "11111111-1111-1111-1111-111111111111", name: "Unidade", baseQty: "1", isBase: true, available: "30"},
			{id: "22222222-2222-2222-2222-222222222222", name: "Caixa 12", baseQty: "12", available: "4"},
			{id: "33333333-3333-3333-3333-333333333333", name: "Pallet 144", baseQty: "144", available: "1"},
		})
	}

	prev := decimal.Zero
	for _, req := range []string{"0", "10", "100", "150", "222", "500", "5000"} {
		plan, err := build().OptimizePickingByPackaging(context.Background(), productID, dec(req))
		assert.NoError(t, err)
		assert.True(t, plan.FulfilledBaseUnits.Cmp(prev) >= 0,
			"pedido %s: atendido %s menor que o anterior %s", req, plan.FulfilledBaseUnits, prev)
		assertConservation(t, plan)
		prev = plan.FulfilledBaseUnits
	}
}

func TestOptimize_TieBreakIsDeterministic(t *testing.T) {
	// Dois níveis com a MESMA base_unit_quantity e o mesmo estoque: o desempate
	// final é por ID, então o plano é sempre o mesmo.
	productID := uuid.New().String()
	idA := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	idB := "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"

	run := func() domain.PickPlan {
		svc := newOptimizer(t, productID, []level{
			{id: idB, name: "Caixa B", baseQty: "12", available: "3"},
			{id: idA, name: "Caixa A", baseQty: "12", available: "3"},
		})
		plan, err := svc.OptimizePickingByPackaging(context.Background(), productID, dec("24"))
		assert.NoError(t, err)
		return plan
	}

	first := run()
	second := run()

	assert.Equal(t, first, second)
	assert.Equal(t, idA, first.Lines[0].PackagingTypeID)
	assertConservation(t, first)
}
