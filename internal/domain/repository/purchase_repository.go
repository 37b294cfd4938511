package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// PurchaseRepository lecturas de reposición física registrada externamente
// (gastos marcados como compra de stock, entregas de carne, recepción de bebidas).
// La ausencia de datos para un día devuelve cero, nunca error.
type PurchaseRepository interface {
	RollsPurchased(ctx context.Context, shiftDay string) (decimal.Decimal, error)
	MeatReceivedGrams(ctx context.Context, shiftDay string) (decimal.Decimal, error)
	DrinksReceived(ctx context.Context, shiftDay string) (decimal.Decimal, error)
}
