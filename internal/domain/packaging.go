package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackagingDefinition representa um nível da hierarquia de embalagens de um
// produto (unidade → caixa → display → pallet).
// A conversão entre níveis é derivada SEMPRE de BaseUnitQuantity; o campo
// Level é apenas uma dica de ordenação para exibição.
type PackagingDefinition struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	BaseUnitQuantity  decimal.Decimal `json:"base_unit_quantity"` // Quantas unidades base cabem em 1 unidade deste nível
	Level             int             `json:"level"`
	ParentPackagingID *string         `json:"parent_packaging_id,omitempty"`
	IsBaseUnit        bool            `json:"is_base_unit"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PackagingNode é um nó da árvore de hierarquia montada a partir dos
// ponteiros ParentPackagingID. Os filhos são resolvidos por lookup de ID,
// nunca por referência viva (evita ciclos de ownership).
type PackagingNode struct {
	PackagingDefinition
	Children []*PackagingNode `json:"children"`
}

// PackagingCreationRequest é o payload esperado para criação de um nível de embalagem.
type PackagingCreationRequest struct {
	ProductID         string          `json:"product_id" validate:"required,uuid"`
	Name              string          `json:"name" validate:"required"`
	BaseUnitQuantity  decimal.Decimal `json:"base_unit_quantity" validate:"required"`
	Level             int             `json:"level"`
	ParentPackagingID *string         `json:"parent_packaging_id,omitempty"`
	IsBaseUnit        bool            `json:"is_base_unit"`
}

// ConversionResult é a resposta das operações de conversão expostas pela API.
type ConversionResult struct {
	PackagingTypeID string          `json:"packaging_type_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	BaseUnits       decimal.Decimal `json:"base_units"`
}

// ConversionFactorResult é a resposta do cálculo de fator entre dois níveis.
type ConversionFactorResult struct {
	FromPackagingID string          `json:"from_packaging_id"`
	ToPackagingID   string          `json:"to_packaging_id"`
	Factor          decimal.Decimal `json:"factor"`
}
