package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo lecturas de reposición registradas por otros subsistemas.
// Sin filas para el día devuelve cero.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// RollsPurchased panes comprados: gastos marcados como ingreso de stock de tipo "rolls".
func (r *PurchaseRepo) RollsPurchased(ctx context.Context, shiftDay string) (decimal.Decimal, error) {
	return r.sum(ctx, "rolls purchased", `
		SELECT COALESCE(SUM(quantity), 0) FROM expense_stock_lodgments
		WHERE shift_day = $1 AND item_type = 'rolls'`, shiftDay)
}

// MeatReceivedGrams gramos de carne entregados.
func (r *PurchaseRepo) MeatReceivedGrams(ctx context.Context, shiftDay string) (decimal.Decimal, error) {
	return r.sum(ctx, "meat received", `
		SELECT COALESCE(SUM(grams), 0) FROM meat_deliveries WHERE shift_day = $1`, shiftDay)
}

// DrinksReceived unidades de bebida recibidas.
func (r *PurchaseRepo) DrinksReceived(ctx context.Context, shiftDay string) (decimal.Decimal, error) {
	return r.sum(ctx, "drinks received", `
		SELECT COALESCE(SUM(quantity), 0) FROM drink_receipts WHERE shift_day = $1`, shiftDay)
}

func (r *PurchaseRepo) sum(ctx context.Context, what, query, shiftDay string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, shiftDay).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%s %s: %w", what, shiftDay, err)
	}
	return total, nil
}
