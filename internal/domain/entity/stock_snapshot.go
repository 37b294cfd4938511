package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot cantidad registrada en el stock vivo de un ingrediente.
type StockSnapshot struct {
	IngredientID string
	Name         string
	Quantity     decimal.Decimal
	Unit         string
	UpdatedAt    time.Time
}

// ConsumptionEvent delta firmado contra el stock vivo (negativo = consumo).
type ConsumptionEvent struct {
	ID           string
	IngredientID string
	Name         string
	Delta        decimal.Decimal
	Reason       string
	OccurredAt   time.Time
}
