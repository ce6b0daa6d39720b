package pickingservice

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// PackagingCatalog é o contrato consumido do serviço de embalagens.
type PackagingCatalog interface {
	GetPackagingsByProduct(ctx domain.Context, productID string) ([]domain.PackagingDefinition, error)
}

// StockReader é o contrato consumido do serviço de estoque: o snapshot de
// disponibilidade por nível de embalagem.
type StockReader interface {
	GetStockByPackaging(ctx domain.Context, productID string) ([]domain.StockByPackaging, error)
}

// Service implementa o otimizador de picking: dado um pedido em unidades base,
// monta o plano de separação que atende o pedido com o menor número prático de
// volumes, preferindo embalagens maiores (1 pallet vale mais que 144 unidades
// soltas na mão do operador).
type Service struct {
	packaging PackagingCatalog
	stock     StockReader
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Picking.
func NewService(packaging PackagingCatalog, stock StockReader, logger logger.Logger) *Service {
	return &Service{packaging: packaging, stock: stock, logger: logger}
}

var one = decimal.NewFromInt(1)

// candidate é um nível de embalagem elegível para o plano: definição ativa com
// disponibilidade positiva no snapshot de estoque.
type candidate struct {
	def       domain.PackagingDefinition
	available decimal.Decimal
}

// OptimizePickingByPackaging calcula o plano de separação para atender
// requestedBaseUnits. Algoritmo guloso: percorre os níveis em ordem
// decrescente de base_unit_quantity, consumindo unidades inteiras sem
// ultrapassar o restante do pedido; a unidade base absorve por fim qualquer
// resto fracionário. Estoque insuficiente não é erro: o plano volta com
// residual positivo e should_fulfill = false.
func (s *Service) OptimizePickingByPackaging(ctx domain.Context, productID string, requestedBaseUnits decimal.Decimal) (domain.PickPlan, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return domain.PickPlan{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if requestedBaseUnits.IsNegative() {
		// Rejeitado na borda, antes de qualquer cálculo parcial.
		return domain.PickPlan{}, apperror.NewInvalidQuantityError("a quantidade solicitada não pode ser negativa.")
	}

	plan := domain.PickPlan{
		ProductID:          productID,
		Lines:              []domain.PickPlanLine{},
		RequestedBaseUnits: requestedBaseUnits,
		FulfilledBaseUnits: decimal.Zero,
		ResidualBaseUnits:  decimal.Zero,
		ShouldFulfill:      true,
	}

	// Pedido zero: plano vazio, trivialmente atendido.
	if requestedBaseUnits.IsZero() {
		return plan, nil
	}

	candidates, err := s.loadCandidates(ctx, productID)
	if err != nil {
		return domain.PickPlan{}, err
	}

	// Maior base_unit_quantity primeiro. Empate: mais estoque disponível
	// primeiro (reduz fragmentação do pool restante); por fim o ID, para que
	// entradas idênticas produzam sempre o mesmo plano.
	sort.Slice(candidates, func(i, j int) bool {
		if cmp := candidates[i].def.BaseUnitQuantity.Cmp(candidates[j].def.BaseUnitQuantity); cmp != 0 {
			return cmp > 0
		}
		if cmp := candidates[i].available.Cmp(candidates[j].available); cmp != 0 {
			return cmp > 0
		}
		return candidates[i].def.ID < candidates[j].def.ID
	})

	remaining := requestedBaseUnits
	for _, cand := range candidates {
		if remaining.IsZero() {
			break
		}

		var unitsUsed decimal.Decimal
		if cand.def.IsBaseUnit {
			// Unidades base são divisíveis até a menor granularidade
			// rastreada: cobrem o resto exatamente, inclusive frações.
			unitsUsed = decimal.Min(cand.available, remaining)
		} else {
			// Apenas unidades INTEIRAS do nível, sem ultrapassar o restante.
			wanted := remaining.Div(cand.def.BaseUnitQuantity).Floor()
			// Guarda contra arredondamento da divisão decimal: o valor em
			// unidades base nunca pode exceder o restante.
			for wanted.Sign() > 0 && wanted.Mul(cand.def.BaseUnitQuantity).Cmp(remaining) > 0 {
				wanted = wanted.Sub(one)
			}
			unitsUsed = decimal.Min(cand.available.Floor(), wanted)
		}

		if unitsUsed.Sign() <= 0 {
			continue
		}

		baseValue := unitsUsed.Mul(cand.def.BaseUnitQuantity)
		plan.Lines = append(plan.Lines, domain.PickPlanLine{
			PackagingTypeID: cand.def.ID,
			PackagingName:   cand.def.Name,
			UnitsUsed:       unitsUsed,
			BaseUnitValue:   baseValue,
		})
		remaining = remaining.Sub(baseValue)
	}

	plan.ResidualBaseUnits = remaining
	plan.FulfilledBaseUnits = requestedBaseUnits.Sub(remaining)
	plan.ShouldFulfill = remaining.IsZero()

	s.logger.Info("Plano de picking calculado.", map[string]interface{}{
		"product_id":     productID,
		"requested":      requestedBaseUnits.String(),
		"fulfilled":      plan.FulfilledBaseUnits.String(),
		"residual":       plan.ResidualBaseUnits.String(),
		"lines":          len(plan.Lines),
		"should_fulfill": plan.ShouldFulfill,
	})
	return plan, nil
}

// loadCandidates cruza o catálogo ativo do produto com o snapshot de estoque,
// mantendo apenas níveis ativos com disponibilidade positiva.
func (s *Service) loadCandidates(ctx domain.Context, productID string) ([]candidate, error) {
	defs, err := s.packaging.GetPackagingsByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Falha ao buscar catálogo de embalagens para o picking.", err)
		return nil, err
	}

	stock, err := s.stock.GetStockByPackaging(ctx, productID)
	if err != nil {
		s.logger.Error("Falha ao buscar snapshot de estoque para o picking.", err)
		return nil, err
	}
	availableByID := make(map[string]decimal.Decimal, len(stock))
	for _, line := range stock {
		availableByID[line.PackagingTypeID] = line.Quantity
	}

	var candidates []candidate
	for _, def := range defs {
		if !def.IsActive {
			// Níveis desativados ficam fora da otimização; o estoque neles
			// registrado segue contando na consolidação.
			continue
		}
		available, ok := availableByID[def.ID]
		if !ok || available.Sign() <= 0 {
			continue
		}
		candidates = append(candidates, candidate{def: def, available: available})
	}
	return candidates, nil
}
