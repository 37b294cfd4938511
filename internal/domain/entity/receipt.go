package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawReceipt transacción POS normalizada (hecho externo, inmutable una vez registrado).
type RawReceipt struct {
	ID            string
	ReceiptNumber string
	Source        string // ej. "loyverse", "grab"
	Channel       string // dine_in, takeaway, delivery...
	CreatedAt     time.Time
	TotalAmount   decimal.Decimal
	LineItems     []RawLineItem
}

// MaxLineQuantity cantidad máxima aceptada en una línea POS. Cada unidad se expande en una
// fila de unidad vendida, así que una cantidad mayor se trata como dato corrupto.
const MaxLineQuantity = 1000

// RawLineItem línea de un recibo POS.
type RawLineItem struct {
	ID             string
	ReceiptID      string
	ProductCode    string // SKU / código externo del producto
	ProductName    string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal // descuento total de la línea (no por unidad)
	Modifiers      []RawModifier
}

// RawModifier modificador de una línea (ej. "extra queso", +20).
type RawModifier struct {
	Name       string
	PriceDelta decimal.Decimal
}

// ModifierCount total de modificadores del recibo.
func (r *RawReceipt) ModifierCount() int {
	n := 0
	for _, li := range r.LineItems {
		n += len(li.Modifiers)
	}
	return n
}
