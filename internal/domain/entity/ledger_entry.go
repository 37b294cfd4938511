package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind tipo de stock físico finito que se concilia por día.
type LedgerKind string

const (
	LedgerRolls  LedgerKind = "rolls"  // panes (unidades)
	LedgerMeat   LedgerKind = "meat"   // carne (gramos)
	LedgerDrinks LedgerKind = "drinks" // bebidas (unidades)
)

// LedgerKinds todos los tipos, en el orden en que se calculan.
var LedgerKinds = []LedgerKind{LedgerRolls, LedgerMeat, LedgerDrinks}

// Valid indica si k es un tipo conocido.
func (k LedgerKind) Valid() bool {
	switch k {
	case LedgerRolls, LedgerMeat, LedgerDrinks:
		return true
	}
	return false
}

// Origen del inventario inicial implícito.
const (
	BaselinePreviousDay       = "previous_day"       // actual_end declarado el día anterior
	BaselineOperatorConfirmed = "operator_confirmed" // confirmado manualmente por un operador
	BaselineUnknown           = "unknown"            // primer día o hueco de datos
)

// LedgerEntry fila de libro por (kind, día de turno). Única por clave compuesta.
type LedgerEntry struct {
	ID              string
	Kind            LedgerKind
	ShiftDay        string
	Estimated       decimal.Decimal  // consumo estimado por ventas + recetas
	Purchased       decimal.Decimal  // reposición del día
	ActualEnd       *decimal.Decimal // conteo final declarado; nil si no hay declaración
	StartingImplied *decimal.Decimal // nil si la línea base es desconocida
	BaselineSource  string
	Variance        *decimal.Decimal // nil si falta actual_end
	MissingMappings []string         // códigos de producto contados como cero
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BaselineConfirmation inventario inicial confirmado por un operador para (kind, día).
type BaselineConfirmation struct {
	Kind        LedgerKind
	ShiftDay    string
	Quantity    decimal.Decimal
	ConfirmedBy string
	ConfirmedAt time.Time
}
