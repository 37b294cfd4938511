package inventory

import "github.com/shopspring/decimal"

// LedgerVariance implementa la ecuación del libro de stock (servicio de dominio).
// Varianza = (InicialImplícito + Comprado) - Estimado - FinalDeclarado
// Positiva: faltante no explicado por ventas. Negativa: sobrante.
func LedgerVariance(startingImplied, purchased, estimated, actualEnd decimal.Decimal) decimal.Decimal {
	return startingImplied.Add(purchased).Sub(estimated).Sub(actualEnd)
}
