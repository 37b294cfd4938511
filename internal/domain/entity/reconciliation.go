package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de conciliación de ventas.
const (
	ReconciliationOK      = "OK"
	ReconciliationWarning = "WARNING"
	ReconciliationFail    = "FAIL"
)

// ReconciliationRecord comparación por día de ventas POS vs. ventas declaradas.
// Exactamente uno por día de turno.
type ReconciliationRecord struct {
	ID             string
	ShiftDay       string
	POSSales       decimal.Decimal
	DeclaredSales  decimal.Decimal
	SalesVariance  decimal.Decimal // declared - pos
	DeclaredBuns   *decimal.Decimal
	DeclaredMeat   *decimal.Decimal
	HasDeclaration bool
	Status         string
	SoldItemCount  int
	CreatedAt      time.Time
}
