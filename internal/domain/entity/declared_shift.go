package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeclaredShift formulario de cierre de turno enviado por el personal (colaborador externo).
type DeclaredShift struct {
	ShiftDay     string
	SalesTotal   decimal.Decimal
	RollsEnd     *decimal.Decimal
	MeatEndGrams *decimal.Decimal
	DrinksEnd    *decimal.Decimal
	SubmittedBy  string
	SubmittedAt  time.Time
}

// EndCount conteo final declarado para el tipo de libro indicado.
func (d *DeclaredShift) EndCount(kind LedgerKind) *decimal.Decimal {
	if d == nil {
		return nil
	}
	switch kind {
	case LedgerRolls:
		return d.RollsEnd
	case LedgerMeat:
		return d.MeatEndGrams
	case LedgerDrinks:
		return d.DrinksEnd
	}
	return nil
}
