package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	"github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/cache"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// Chave de cache para produtos.
const productCacheKey = "product:%s"

// ProductRepository é a camada de acesso a dados dos produtos.
// Ela contém as conexões necessárias para acessar dados (DB e Cache).
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	const productSQL = `INSERT INTO products (id, sku, name, description, is_active, created_at, updated_at)
                        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := r.DB.ExecContext(ctxTimeout, productSQL,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, errors.NewDBError("failed to insert product", err)
	}

	r.logger.Info("Produto salvo com sucesso.", map[string]interface{}{"id": product.ID, "sku": product.SKU})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// --- Estratégia Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos, mas continuamos.
		r.logger.Warn("Falha ao ler produto do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// --- Busca no Banco de Dados (PostgreSQL) ---
	productSQL := `
        SELECT id, sku, name, description, is_active, created_at, updated_at
        FROM products
        WHERE id = $1`

	row := r.DB.QueryRowContext(ctxTimeout, productSQL, id)

	err = row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		// O Serviço receberá isso e o Handler o mapeará para 404.
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto no DB", err)
	}

	// --- Estratégia Cache-Aside (WRITE) ---
	// Se encontrado no DB, populamos o cache para futuras requisições.
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll busca produtos com filtro e paginação.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := `
        SELECT id, sku, name, description, is_active, created_at, updated_at
        FROM products
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
          AND ($2 = '' OR sku = $2)
          AND (NOT $3 OR is_active)
        ORDER BY name
        LIMIT $4 OFFSET $5`

	rows, err := r.DB.QueryContext(ctxTimeout, query, filter.Name, filter.SKU, filter.ActiveOnly, limit, offset)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de produtos.", err)
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			r.logger.Error("Falha ao mapear linha de produto.", err)
			return nil, errors.NewDBError("Falha ao mapear produto", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}

	return products, nil
}
