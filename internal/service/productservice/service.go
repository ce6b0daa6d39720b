package productservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Service é a estrutura que implementa a interface domain.ProductService.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProduct valida e persiste um novo produto.
func (s *Service) CreateProduct(ctx domain.Context, product domain.Product) (domain.Product, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	// Validação de Regras de Negócio
	if strings.TrimSpace(product.Name) == "" || strings.TrimSpace(product.SKU) == "" {
		return domain.Product{}, apperror.NewValidationError("Nome e SKU são obrigatórios para o produto.")
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.IsActive = true
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	createdProduct, err := s.repo.Save(ctxGo, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		// Propaga o erro retornado pelo Repositório (apperror.InternalError ou similar)
		return domain.Product{}, fmt.Errorf("falha ao salvar produto no repositório: %w", err)
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": createdProduct.ID, "sku": createdProduct.SKU})
	return createdProduct, nil
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx domain.Context, id string) (domain.Product, error) {
	// 1. Validação de Formato (Business Logic)
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	product, err := s.repo.FindByID(ctxGo, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não foi encontrado.", id))
		}
		// Qualquer outro erro (DB falhou, conexão perdida - 500) é propagado.
		return domain.Product{}, err
	}

	return product, nil
}

// ListProducts busca produtos com filtro e paginação.
func (s *Service) ListProducts(ctx domain.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	products, err := s.repo.FindAll(ctxGo, filter)
	if err != nil {
		s.logger.Error("Falha ao listar produtos no repositório.", err)
		return nil, apperror.NewInternalError("Falha interna ao listar produtos.", err)
	}

	return products, nil
}
