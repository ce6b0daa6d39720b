package stockrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	"github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// StockRepository é a camada de acesso a dados dos registros de estoque.
// O motor de conversão/picking apenas LÊ snapshots daqui; a única mutação é o
// ajuste de estoque (UpdateStockRecord), protegido por OCC.
type StockRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByProduct busca todos os registros de estoque de um produto.
// Retorna um snapshot imutável; o chamador nunca escreve de volta por aqui.
func (r *StockRepository) FindByProduct(ctx context.Context, productID string) ([]domain.StockRecord, error) {
	r.logger.Debug("Buscando registros de estoque no repositório.", map[string]interface{}{"product_id": productID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, product_id, packaging_type_id, quantity, version, created_at, updated_at
        FROM stock_records
        WHERE product_id = $1`

	rows, err := r.DB.QueryContext(ctxTimeout, query, productID)
	if err != nil {
		r.logger.Error("Falha ao buscar registros de estoque no DB.", err)
		return nil, errors.NewDBError("Falha ao buscar registros de estoque", err)
	}
	defer rows.Close()

	var records []domain.StockRecord
	for rows.Next() {
		var rec domain.StockRecord
		if err := rows.Scan(
			&rec.ID, &rec.ProductID, &rec.PackagingTypeID, &rec.Quantity,
			&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			r.logger.Error("Falha ao mapear registro de estoque.", err)
			return nil, errors.NewDBError("Falha ao mapear registro de estoque", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar registros de estoque", err)
	}

	r.logger.Debug("Registros de estoque encontrados.", map[string]interface{}{"product_id": productID, "count": len(records)})
	return records, nil
}

// UpdateStockRecord aplica um ajuste ao estoque de um (produto, embalagem),
// utilizando transação e controle de concorrência otimista (OCC).
func (r *StockRepository) UpdateStockRecord(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	r.logger.Debug("Iniciando atualização de estoque no repositório.", map[string]interface{}{
		"product_id":        adjustment.ProductID,
		"packaging_type_id": adjustment.PackagingTypeID,
		"delta":             adjustment.Delta.String(),
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para atualização de estoque.", err)
		return domain.StockRecord{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	// 1. Obter o registro atual (FOR UPDATE bloqueia a linha na transação).
	//    É crucial selecionar a 'version' atual aqui.
	var current domain.StockRecord
	querySelect := `
        SELECT id, product_id, packaging_type_id, quantity, version, created_at, updated_at
        FROM stock_records
        WHERE product_id = $1 AND packaging_type_id = $2 FOR UPDATE`

	err = tx.QueryRowContext(ctxTimeout, querySelect, adjustment.ProductID, adjustment.PackagingTypeID).Scan(
		&current.ID, &current.ProductID, &current.PackagingTypeID, &current.Quantity,
		&current.Version, &current.CreatedAt, &current.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		// Se não houver registro, é uma inserção inicial
		if adjustment.Delta.IsNegative() {
			r.logger.Warn("Tentativa de criar estoque com quantidade negativa.", map[string]interface{}{
				"product_id": adjustment.ProductID, "packaging_type_id": adjustment.PackagingTypeID, "delta": adjustment.Delta.String(),
			})
			return domain.StockRecord{}, errors.NewValidationError("Não é possível criar estoque com quantidade negativa.")
		}

		queryInsert := `
            INSERT INTO stock_records (id, product_id, packaging_type_id, quantity, version, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, product_id, packaging_type_id, quantity, version, created_at, updated_at`

		var created domain.StockRecord
		err = tx.QueryRowContext(ctxTimeout, queryInsert,
			uuid.New().String(), adjustment.ProductID, adjustment.PackagingTypeID, adjustment.Delta, 1, time.Now(), time.Now(),
		).Scan(
			&created.ID, &created.ProductID, &created.PackagingTypeID, &created.Quantity,
			&created.Version, &created.CreatedAt, &created.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Falha ao inserir novo registro de estoque.", err)
			return domain.StockRecord{}, errors.NewDBError("Falha ao inserir novo registro de estoque", err)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			r.logger.Error("Falha ao commitar transação de inserção de estoque.", commitErr)
			return domain.StockRecord{}, errors.NewDBError("Falha ao commitar transação", commitErr)
		}
		r.logger.Info("Novo registro de estoque criado com sucesso.", map[string]interface{}{
			"product_id": adjustment.ProductID, "packaging_type_id": adjustment.PackagingTypeID, "quantity": created.Quantity.String(),
		})
		return created, nil

	} else if err != nil {
		r.logger.Error("Falha ao selecionar registro de estoque para atualização.", err)
		return domain.StockRecord{}, errors.NewDBError("Falha ao buscar estoque para atualização", err)
	}

	// 2. Aplicar o ajuste e rejeitar quantidade resultante negativa
	newQuantity := current.Quantity.Add(adjustment.Delta)
	if newQuantity.Cmp(decimal.Zero) < 0 {
		r.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{
			"product_id": adjustment.ProductID, "packaging_type_id": adjustment.PackagingTypeID,
			"current_quantity": current.Quantity.String(), "delta": adjustment.Delta.String(),
		})
		return domain.StockRecord{}, errors.NewValidationError("Ajuste resultaria em quantidade de estoque negativa.")
	}

	// 3. Atualizar o registro com OCC
	queryUpdate := `
        UPDATE stock_records
        SET quantity = $1, version = $2, updated_at = $3
        WHERE product_id = $4 AND packaging_type_id = $5 AND version = $6`

	result, err := tx.ExecContext(ctxTimeout, queryUpdate,
		newQuantity,
		current.Version+1, // Incrementa a versão
		time.Now(),
		adjustment.ProductID,
		adjustment.PackagingTypeID,
		current.Version, // Checa a versão antiga para OCC
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar registro de estoque.", err)
		return domain.StockRecord{}, errors.NewDBError("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após atualização de estoque.", err)
		return domain.StockRecord{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC). Versão do registro desatualizada.", map[string]interface{}{
			"product_id":        adjustment.ProductID,
			"packaging_type_id": adjustment.PackagingTypeID,
			"expected_version":  current.Version,
		})
		// O registro foi modificado por outra transação.
		return domain.StockRecord{}, errors.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	}

	// 4. Commitar a transação
	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de atualização de estoque.", commitErr)
		return domain.StockRecord{}, errors.NewDBError("Falha ao commitar transação", commitErr)
	}

	current.Quantity = newQuantity
	current.Version++
	current.UpdatedAt = time.Now()
	r.logger.Info("Registro de estoque atualizado com sucesso.", map[string]interface{}{
		"product_id":        adjustment.ProductID,
		"packaging_type_id": adjustment.PackagingTypeID,
		"new_quantity":      newQuantity.String(),
		"new_version":       current.Version,
	})
	return current, nil
}
