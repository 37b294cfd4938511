// Package variance semáforo de varianza por ingrediente (verde / amarillo / rojo).
package variance

import "github.com/shopspring/decimal"

// Severidades del reporte de varianza.
const (
	SeverityGreen  = "green"
	SeverityYellow = "yellow"
	SeverityRed    = "red"
)

// Thresholds |v| <= GreenMax → verde; GreenMax < |v| <= YellowMax → amarillo; resto rojo.
type Thresholds struct {
	GreenMax  decimal.Decimal
	YellowMax decimal.Decimal
}

// DefaultThresholds 10 / 30.
func DefaultThresholds() Thresholds {
	return Thresholds{GreenMax: decimal.NewFromInt(10), YellowMax: decimal.NewFromInt(30)}
}

// Classify devuelve la severidad de una varianza firmada.
func (t Thresholds) Classify(v decimal.Decimal) string {
	abs := v.Abs()
	switch {
	case abs.LessThanOrEqual(t.GreenMax):
		return SeverityGreen
	case abs.LessThanOrEqual(t.YellowMax):
		return SeverityYellow
	default:
		return SeverityRed
	}
}
