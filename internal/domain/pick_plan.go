package domain

import "github.com/shopspring/decimal"

// PickPlanLine é uma linha do resultado do otimizador: quantas unidades de um
// nível de embalagem devem ser separadas, e quanto isso vale em unidades base.
// Invariante: BaseUnitValue = UnitsUsed × BaseUnitQuantity(PackagingTypeID).
type PickPlanLine struct {
	PackagingTypeID string          `json:"packaging_type_id"`
	PackagingName   string          `json:"packaging_name"`
	UnitsUsed       decimal.Decimal `json:"units_used"`
	BaseUnitValue   decimal.Decimal `json:"base_unit_value"`
}

// PickPlan é o plano concreto de separação para atender uma quantidade
// solicitada em unidades base.
// Invariantes: FulfilledBaseUnits + ResidualBaseUnits = RequestedBaseUnits e
// FulfilledBaseUnits = Σ Lines[i].BaseUnitValue.
// Estoque insuficiente NÃO é erro: é reportado como ResidualBaseUnits > 0 com
// ShouldFulfill = false, e o chamador decide (atendimento parcial, backorder, recusa).
type PickPlan struct {
	ProductID          string          `json:"product_id"`
	Lines              []PickPlanLine  `json:"lines"`
	RequestedBaseUnits decimal.Decimal `json:"requested_base_units"`
	FulfilledBaseUnits decimal.Decimal `json:"fulfilled_base_units"`
	ResidualBaseUnits  decimal.Decimal `json:"residual_base_units"`
	ShouldFulfill      bool            `json:"should_fulfill"`
}

// PickPlanRequest é o payload esperado para a requisição de otimização de picking.
type PickPlanRequest struct {
	ProductID          string          `json:"product_id" validate:"required,uuid"`
	RequestedBaseUnits decimal.Decimal `json:"requested_base_units"`
}
