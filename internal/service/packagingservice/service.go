package packagingservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// PackagingRepository define o contrato que o Serviço de Embalagens espera da camada de Persistência.
type PackagingRepository interface {
	Save(ctx context.Context, def domain.PackagingDefinition) (domain.PackagingDefinition, error)
	FindByID(ctx context.Context, id string) (domain.PackagingDefinition, error)
	FindByProduct(ctx context.Context, productID string) ([]domain.PackagingDefinition, error)
	Deactivate(ctx context.Context, id string) error
}

// Service implementa o catálogo de embalagens e o motor de conversão.
// A conversão é a primitiva compartilhada: tanto a consolidação de estoque
// quanto o otimizador de picking dependem dela.
type Service struct {
	repo   PackagingRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Embalagens.
func NewService(repo PackagingRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

var one = decimal.NewFromInt(1)

// CreatePackaging cria um novo nível de embalagem após validar as invariantes
// do catálogo: exatamente uma unidade base por produto com quantidade 1, e
// todos os demais níveis com quantidade estritamente maior que 1.
func (s *Service) CreatePackaging(ctx domain.Context, req domain.PackagingCreationRequest) (domain.PackagingDefinition, error) {
	s.logger.Debug("Iniciando criação de embalagem no serviço.", map[string]interface{}{
		"product_id": req.ProductID, "name": req.Name, "base_unit_quantity": req.BaseUnitQuantity.String(),
	})

	if _, err := uuid.Parse(req.ProductID); err != nil {
		return domain.PackagingDefinition{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.PackagingDefinition{}, apperror.NewValidationError("O nome da embalagem não pode ser vazio.")
	}

	if req.IsBaseUnit {
		if !req.BaseUnitQuantity.Equal(one) {
			return domain.PackagingDefinition{}, apperror.NewValidationError("A unidade base deve ter base_unit_quantity igual a 1.")
		}
	} else {
		if req.BaseUnitQuantity.Cmp(one) <= 0 {
			return domain.PackagingDefinition{}, apperror.NewValidationError("Embalagens acima da unidade base devem ter base_unit_quantity maior que 1.")
		}
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CreatePackaging", nil)
	}

	existing, err := s.repo.FindByProduct(ctxGo, req.ProductID)
	if err != nil {
		s.logger.Error("Falha ao consultar catálogo existente do produto.", err)
		return domain.PackagingDefinition{}, err
	}

	if req.IsBaseUnit {
		for _, def := range existing {
			if def.IsBaseUnit {
				return domain.PackagingDefinition{}, apperror.NewConflictError(
					fmt.Sprintf("O produto %s já possui uma unidade base (%s).", req.ProductID, def.Name))
			}
		}
	}

	// O pai, quando informado, deve existir e pertencer ao mesmo produto.
	// Como todo pai já existe antes do filho, a relação nunca forma ciclo.
	if req.ParentPackagingID != nil {
		var parentFound bool
		for _, def := range existing {
			if def.ID == *req.ParentPackagingID {
				parentFound = true
				break
			}
		}
		if !parentFound {
			return domain.PackagingDefinition{}, apperror.NewValidationError(
				fmt.Sprintf("A embalagem pai %s não existe no catálogo do produto.", *req.ParentPackagingID))
		}
	}

	level := req.Level
	if level <= 0 {
		level = 1
	}

	def := domain.PackagingDefinition{
		ProductID:         req.ProductID,
		Name:              strings.TrimSpace(req.Name),
		BaseUnitQuantity:  req.BaseUnitQuantity,
		Level:             level,
		ParentPackagingID: req.ParentPackagingID,
		IsBaseUnit:        req.IsBaseUnit,
		IsActive:          true,
	}

	created, err := s.repo.Save(ctxGo, def)
	if err != nil {
		s.logger.Error("Falha ao criar embalagem no repositório.", err)
		return domain.PackagingDefinition{}, err
	}

	s.logger.Info("Embalagem criada com sucesso.", map[string]interface{}{"id": created.ID, "product_id": created.ProductID, "name": created.Name})
	return created, nil
}

// GetPackagingsByProduct retorna o catálogo plano de um produto, ordenado por
// level ascendente (unidade base primeiro).
func (s *Service) GetPackagingsByProduct(ctx domain.Context, productID string) ([]domain.PackagingDefinition, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetPackagingsByProduct", nil)
	}

	defs, err := s.repo.FindByProduct(ctxGo, productID)
	if err != nil {
		s.logger.Error("Falha ao buscar catálogo de embalagens no repositório.", err)
		return nil, err
	}
	return defs, nil
}

// GetPackagingHierarchy monta a árvore (ou floresta) de embalagens de um
// produto a partir dos ponteiros de pai, resolvidos por lookup de ID.
func (s *Service) GetPackagingHierarchy(ctx domain.Context, productID string) ([]*domain.PackagingNode, error) {
	defs, err := s.GetPackagingsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*domain.PackagingNode, len(defs))
	for _, def := range defs {
		nodes[def.ID] = &domain.PackagingNode{PackagingDefinition: def, Children: []*domain.PackagingNode{}}
	}

	// Definições chegam ordenadas por level; a ordem dos filhos herda essa ordenação.
	var roots []*domain.PackagingNode
	for _, def := range defs {
		node := nodes[def.ID]
		if def.ParentPackagingID != nil {
			if parent, ok := nodes[*def.ParentPackagingID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
			// Pai referenciado fora do catálogo: tratamos o nó como raiz e
			// sinalizamos o problema de qualidade de dados.
			s.logger.Warn("Embalagem referencia pai inexistente no catálogo.", map[string]interface{}{
				"packaging_id": def.ID, "parent_packaging_id": *def.ParentPackagingID,
			})
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// ConvertToBaseUnits converte uma quantidade denominada em um nível de
// embalagem para unidades base: quantity × baseUnitQuantity(packagingTypeID).
// Aceita definições inativas (registros históricos ainda precisam ser convertidos).
func (s *Service) ConvertToBaseUnits(ctx domain.Context, quantity decimal.Decimal, packagingTypeID string) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, apperror.NewInvalidQuantityError("a quantidade a converter não pode ser negativa.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para ConvertToBaseUnits", nil)
	}

	def, err := s.repo.FindByID(ctxGo, packagingTypeID)
	if err != nil {
		return decimal.Zero, err
	}

	return quantity.Mul(def.BaseUnitQuantity), nil
}

// CalculateConversionFactor calcula o fator de conversão entre dois níveis de
// embalagem do MESMO produto: baseUnitQuantity(from) / baseUnitQuantity(to).
// Converter uma quantidade q de 'from' para 'to' é q × fator. O fator é sempre
// estritamente positivo, pois toda baseUnitQuantity é positiva por invariante.
func (s *Service) CalculateConversionFactor(ctx domain.Context, fromPackagingID, toPackagingID string) (decimal.Decimal, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CalculateConversionFactor", nil)
	}

	from, err := s.repo.FindByID(ctxGo, fromPackagingID)
	if err != nil {
		return decimal.Zero, err
	}

	// Reflexividade: de um nível para ele mesmo o fator é exatamente 1,
	// sem passar pela divisão (evita qualquer deriva de arredondamento).
	if fromPackagingID == toPackagingID {
		return one, nil
	}

	to, err := s.repo.FindByID(ctxGo, toPackagingID)
	if err != nil {
		return decimal.Zero, err
	}

	if from.ProductID != to.ProductID {
		s.logger.Warn("Tentativa de conversão entre produtos distintos.", map[string]interface{}{
			"from_packaging_id": fromPackagingID, "to_packaging_id": toPackagingID,
		})
		return decimal.Zero, apperror.NewCrossProductConversionError(fromPackagingID, toPackagingID)
	}

	return from.BaseUnitQuantity.Div(to.BaseUnitQuantity), nil
}

// DeactivatePackaging marca uma embalagem como inativa (soft delete).
// A unidade base nunca pode ser desativada: ela é a âncora da conversão e o
// nível de fallback do otimizador.
func (s *Service) DeactivatePackaging(ctx domain.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da embalagem deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para DeactivatePackaging", nil)
	}

	def, err := s.repo.FindByID(ctxGo, id)
	if err != nil {
		return err
	}
	if def.IsBaseUnit {
		return apperror.NewValidationError("A unidade base do produto não pode ser desativada.")
	}

	if err := s.repo.Deactivate(ctxGo, id); err != nil {
		s.logger.Error("Falha ao desativar embalagem no repositório.", err)
		return err
	}

	s.logger.Info("Embalagem desativada com sucesso.", map[string]interface{}{"id": id})
	return nil
}
