// Package reconciliation clasifica la diferencia entre ventas declaradas y ventas POS.
package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// Umbrales por defecto (unidades de moneda). Son constantes de negocio, configurables.
var (
	DefaultWarningAbove = decimal.NewFromInt(100)
	DefaultFailAbove    = decimal.NewFromInt(500)
)

// Thresholds umbrales de severidad. |varianza| <= WarningAbove → OK;
// WarningAbove < |varianza| <= FailAbove → WARNING; > FailAbove → FAIL.
type Thresholds struct {
	WarningAbove decimal.Decimal
	FailAbove    decimal.Decimal
}

// DefaultThresholds umbrales 100 / 500.
func DefaultThresholds() Thresholds {
	return Thresholds{WarningAbove: DefaultWarningAbove, FailAbove: DefaultFailAbove}
}

// Classify devuelve OK, WARNING o FAIL para una varianza firmada.
func (t Thresholds) Classify(salesVariance decimal.Decimal) string {
	abs := salesVariance.Abs()
	switch {
	case abs.GreaterThan(t.FailAbove):
		return entity.ReconciliationFail
	case abs.GreaterThan(t.WarningAbove):
		return entity.ReconciliationWarning
	default:
		return entity.ReconciliationOK
	}
}
