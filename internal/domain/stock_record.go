package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa uma quantidade em estoque de um produto, denominada
// em UM nível de embalagem. Quantity é a contagem daquele nível (2 pallets,
// 15 caixas), nunca unidades base.
// Inclui uma coluna 'version' para controle de concorrência otimista.
type StockRecord struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	PackagingTypeID string          `json:"packaging_type_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Version         int             `json:"version"` // Para Controle de Concorrência Otimista (OCC)
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StockByPackaging é uma linha da visão "estoque por embalagem": o total
// registrado contra um nível, já com os metadados do nível para exibição.
type StockByPackaging struct {
	PackagingTypeID  string          `json:"packaging_type_id"`
	PackagingName    string          `json:"packaging_name"`
	Level            int             `json:"level"`
	BaseUnitQuantity decimal.Decimal `json:"base_unit_quantity"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// ConsolidatedStock é o total de estoque de um produto expresso uniformemente
// em unidades base, independente de como está fisicamente endereçado.
type ConsolidatedStock struct {
	ProductID      string          `json:"product_id"`
	TotalBaseUnits decimal.Decimal `json:"total_base_units"`
}

// StockAdjustmentRequest é o payload esperado para a requisição de ajuste de estoque.
type StockAdjustmentRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	PackagingTypeID string          `json:"packaging_type_id" validate:"required,uuid"`
	Delta           decimal.Decimal `json:"delta" validate:"required"` // Quantidade (do nível) a ser adicionada/removida
}
