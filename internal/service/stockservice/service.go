package stockservice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
type StockRepository interface {
	FindByProduct(ctx context.Context, productID string) ([]domain.StockRecord, error)
	UpdateStockRecord(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error)
}

// PackagingCatalog é o contrato consumido do serviço de embalagens: o catálogo
// do produto e a primitiva de conversão compartilhada.
type PackagingCatalog interface {
	GetPackagingsByProduct(ctx domain.Context, productID string) ([]domain.PackagingDefinition, error)
	ConvertToBaseUnits(ctx domain.Context, quantity decimal.Decimal, packagingTypeID string) (decimal.Decimal, error)
}

// Service implementa a consolidação de estoque e o ajuste de estoque.
// A consolidação soma registros heterogêneos (pallets, caixas, unidades
// soltas) numa base comum: unidades base.
type Service struct {
	repo      StockRepository
	packaging PackagingCatalog
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, packaging PackagingCatalog, logger logger.Logger) *Service {
	return &Service{repo: repo, packaging: packaging, logger: logger}
}

// GetStockByPackaging retorna o estoque bruto por nível de embalagem, sem
// agregação em unidades base, ordenado por level ascendente (unidade base primeiro).
func (s *Service) GetStockByPackaging(ctx domain.Context, productID string) ([]domain.StockByPackaging, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetStockByPackaging", nil)
	}

	records, err := s.repo.FindByProduct(ctxGo, productID)
	if err != nil {
		s.logger.Error("Falha ao buscar registros de estoque no repositório.", err)
		return nil, err
	}

	defs, err := s.packaging.GetPackagingsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	defByID := make(map[string]domain.PackagingDefinition, len(defs))
	for _, def := range defs {
		defByID[def.ID] = def
	}

	// Agrupa por nível de embalagem; mais de um registro no mesmo nível é legal
	// (endereços diferentes, por exemplo) e entra somado.
	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		if _, found := defByID[rec.PackagingTypeID]; !found {
			// Registro aponta para embalagem fora do catálogo: nunca assumimos um padrão.
			return nil, apperror.NewPackagingNotFoundError(rec.PackagingTypeID)
		}
		totals[rec.PackagingTypeID] = totals[rec.PackagingTypeID].Add(rec.Quantity)
	}

	result := make([]domain.StockByPackaging, 0, len(totals))
	for packagingID, qty := range totals {
		def := defByID[packagingID]
		result = append(result, domain.StockByPackaging{
			PackagingTypeID:  packagingID,
			PackagingName:    def.Name,
			Level:            def.Level,
			BaseUnitQuantity: def.BaseUnitQuantity,
			Quantity:         qty,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Level != result[j].Level {
			return result[i].Level < result[j].Level
		}
		return result[i].BaseUnitQuantity.Cmp(result[j].BaseUnitQuantity) < 0
	})

	return result, nil
}

// GetStockConsolidated calcula o total de estoque do produto em unidades base:
// Σ ConvertToBaseUnits(registro.Quantity, registro.PackagingTypeID).
// É a fonte única de verdade de "quanto realmente temos", independente de como
// o estoque está fisicamente endereçado: re-endereçar um pallet como 144
// unidades soltas não altera o resultado.
func (s *Service) GetStockConsolidated(ctx domain.Context, productID string) (domain.ConsolidatedStock, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return domain.ConsolidatedStock{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetStockConsolidated", nil)
	}

	records, err := s.repo.FindByProduct(ctxGo, productID)
	if err != nil {
		s.logger.Error("Falha ao buscar registros de estoque no repositório.", err)
		return domain.ConsolidatedStock{}, err
	}

	total := decimal.Zero
	for _, rec := range records {
		baseUnits, err := s.packaging.ConvertToBaseUnits(ctx, rec.Quantity, rec.PackagingTypeID)
		if err != nil {
			s.logger.Error("Falha ao converter registro de estoque para unidades base.", err)
			return domain.ConsolidatedStock{}, err
		}
		total = total.Add(baseUnits)
	}

	s.logger.Debug("Estoque consolidado calculado.", map[string]interface{}{
		"product_id": productID, "total_base_units": total.String(), "records": len(records),
	})
	return domain.ConsolidatedStock{ProductID: productID, TotalBaseUnits: total}, nil
}

// AdjustStock aplica um ajuste (delta, na contagem do nível de embalagem) ao
// estoque de um produto. Esta é a mutação do colaborador: o motor de
// conversão/picking nunca escreve estoque.
func (s *Service) AdjustStock(ctx domain.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"product_id":        adjustment.ProductID,
		"packaging_type_id": adjustment.PackagingTypeID,
		"delta":             adjustment.Delta.String(),
	})

	if adjustment.Delta.IsZero() {
		return domain.StockRecord{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}
	if _, err := uuid.Parse(adjustment.ProductID); err != nil {
		return domain.StockRecord{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	// A embalagem referenciada deve existir e pertencer ao produto do ajuste.
	defs, err := s.packaging.GetPackagingsByProduct(ctx, adjustment.ProductID)
	if err != nil {
		return domain.StockRecord{}, err
	}
	var found bool
	for _, def := range defs {
		if def.ID == adjustment.PackagingTypeID {
			found = true
			break
		}
	}
	if !found {
		return domain.StockRecord{}, apperror.NewPackagingNotFoundError(adjustment.PackagingTypeID)
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para AdjustStock", nil)
	}

	record, err := s.repo.UpdateStockRecord(ctxGo, adjustment)
	if err != nil {
		s.logger.Error("Falha ao ajustar estoque no repositório.", err)
		var conflictErr *apperror.ConflictError
		if errors.As(err, &conflictErr) {
			return domain.StockRecord{}, apperror.NewConflictError(fmt.Sprintf("Falha de concorrência: %s", conflictErr.Error()))
		}
		var validationErr *apperror.ValidationError
		if errors.As(err, &validationErr) {
			return domain.StockRecord{}, apperror.NewValidationError(fmt.Sprintf("Validação do estoque: %s", validationErr.Error()))
		}
		return domain.StockRecord{}, apperror.NewInternalError("Falha interna ao ajustar estoque.", err)
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":        record.ProductID,
		"packaging_type_id": record.PackagingTypeID,
		"new_quantity":      record.Quantity.String(),
		"new_version":       record.Version,
	})
	return record, nil
}
