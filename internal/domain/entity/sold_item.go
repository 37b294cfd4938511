package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SoldItem una unidad vendida, explotada desde la cantidad de una línea POS.
// Se recrea completa por día de turno en cada derivación.
type SoldItem struct {
	ID          string
	ReceiptID   string
	LineItemID  string
	UnitIndex   int // 0..quantity-1 dentro de la línea
	SoldAt      time.Time
	ShiftDay    string // YYYY-MM-DD
	Channel     string
	ProductCode string
	ProductName string
	RecipeID    *string // nil si el producto no tiene receta mapeada
	GrossAmount decimal.Decimal
	NetAmount   decimal.Decimal
	Modifiers   []SoldItemModifier
}

// SoldItemModifier modificador adjunto a una unidad vendida.
type SoldItemModifier struct {
	ID         string
	SoldItemID string
	Name       string
	PriceDelta decimal.Decimal
}
