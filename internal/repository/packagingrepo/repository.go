package packagingrepo

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

// Chaves de cache do catálogo de embalagens.
const (
	packagingCacheKey        = "packaging:%s"
	productPackagingCacheKey = "packagings:product:%s"
)

// PackagingRepository é a camada de acesso a dados do catálogo de embalagens.
// Leituras usam a estratégia Cache-Aside (Redis); escritas invalidam as chaves.
type PackagingRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewPackagingRepository cria e retorna uma nova instância do Repositório de Embalagens.
func NewPackagingRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *PackagingRepository {
	return &PackagingRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Save insere uma nova definição de embalagem no banco de dados.
func (r *PackagingRepository) Save(ctx context.Context, def domain.PackagingDefinition) (domain.PackagingDefinition, error) {
	r.logger.Debug("Iniciando Save de embalagem no repositório.", map[string]interface{}{"product_id": def.ProductID, "name": def.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	query := `
        INSERT INTO packaging_definitions
            (id, product_id, name, base_unit_quantity, level, parent_packaging_id, is_base_unit, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		def.ID, def.ProductID, def.Name, def.BaseUnitQuantity, def.Level,
		def.ParentPackagingID, def.IsBaseUnit, def.IsActive, def.CreatedAt, def.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir embalagem no DB.", err)
		return domain.PackagingDefinition{}, errors.NewDBError("Falha ao criar embalagem", err)
	}

	// Invalida a lista em cache do produto (a nova definição deve aparecer)
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productPackagingCacheKey, def.ProductID))

	r.logger.Info("Embalagem criada com sucesso.", map[string]interface{}{"id": def.ID, "product_id": def.ProductID, "name": def.Name})
	return def, nil
}

// FindByID busca uma definição de embalagem pelo ID, utilizando a estratégia Cache-Aside.
// Definições inativas também são retornadas: registros históricos de estoque
// ainda precisam ser convertidos.
func (r *PackagingRepository) FindByID(ctx context.Context, id string) (domain.PackagingDefinition, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(packagingCacheKey, id)
	var def domain.PackagingDefinition

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &def) == nil {
			return def, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (conexão perdida): logamos e continuamos.
		r.logger.Warn("Falha ao ler embalagem do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := `
        SELECT id, product_id, name, base_unit_quantity, level, parent_packaging_id, is_base_unit, is_active, created_at, updated_at
        FROM packaging_definitions
        WHERE id = $1`

	err = r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&def.ID, &def.ProductID, &def.Name, &def.BaseUnitQuantity, &def.Level,
		&def.ParentPackagingID, &def.IsBaseUnit, &def.IsActive, &def.CreatedAt, &def.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		r.logger.Info("Embalagem não encontrada.", map[string]interface{}{"id": id})
		return domain.PackagingDefinition{}, errors.NewPackagingNotFoundError(id)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar embalagem no DB.", err)
		return domain.PackagingDefinition{}, errors.NewDBError("Falha ao buscar embalagem", err)
	}

	// 3. Popula o cache para futuras requisições (Cache-Aside WRITE)
	if defJSON, marshalErr := json.Marshal(def); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, defJSON, r.CacheTTL)
	}

	return def, nil
}

// FindByProduct busca todas as definições de embalagem de um produto,
// ordenadas por level ascendente (unidade base primeiro). Inclui inativas.
func (r *PackagingRepository) FindByProduct(ctx context.Context, productID string) ([]domain.PackagingDefinition, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productPackagingCacheKey, productID)
	var defs []domain.PackagingDefinition

	// 1. Cache-Aside (READ)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &defs) == nil {
			return defs, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler catálogo do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Busca no DB
	query := `
        SELECT id, product_id, name, base_unit_quantity, level, parent_packaging_id, is_base_unit, is_active, created_at, updated_at
        FROM packaging_definitions
        WHERE product_id = $1
        ORDER BY level ASC, base_unit_quantity ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, productID)
	if err != nil {
		r.logger.Error("Falha ao executar FindByProduct query.", err)
		return nil, errors.NewDBError("Falha ao buscar catálogo de embalagens", err)
	}
	defer rows.Close()

	for rows.Next() {
		var def domain.PackagingDefinition
		if err := rows.Scan(
			&def.ID, &def.ProductID, &def.Name, &def.BaseUnitQuantity, &def.Level,
			&def.ParentPackagingID, &def.IsBaseUnit, &def.IsActive, &def.CreatedAt, &def.UpdatedAt,
		); err != nil {
			r.logger.Error("Falha ao mapear linha de embalagem.", err)
			return nil, errors.NewDBError("Falha ao mapear embalagem", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar catálogo de embalagens", err)
	}

	// 3. Cache-Aside (WRITE)
	if defsJSON, marshalErr := json.Marshal(defs); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, defsJSON, r.CacheTTL)
	}

	return defs, nil
}

// Deactivate marca uma definição de embalagem como inativa (soft delete).
// A definição segue disponível para conversão de registros históricos, mas
// deixa de ser candidata na otimização de picking.
func (r *PackagingRepository) Deactivate(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando Deactivate de embalagem no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE packaging_definitions
        SET is_active = false, updated_at = $1
        WHERE id = $2
        RETURNING product_id`

	var productID string
	err := r.DB.QueryRowContext(ctxTimeout, query, time.Now().UTC(), id).Scan(&productID)
	if err == sql.ErrNoRows {
		r.logger.Info("Embalagem não encontrada para desativação.", map[string]interface{}{"id": id})
		return errors.NewPackagingNotFoundError(id)
	}
	if err != nil {
		r.logger.Error("Falha ao desativar embalagem no DB.", err)
		return errors.NewDBError("Falha ao desativar embalagem", err)
	}

	// Invalida as chaves afetadas
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(packagingCacheKey, id))
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productPackagingCacheKey, productID))

	r.logger.Info("Embalagem desativada com sucesso.", map[string]interface{}{"id": id, "product_id": productID})
	return nil
}
