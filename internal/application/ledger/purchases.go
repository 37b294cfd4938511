package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

// StockPurchases lecturas de reposición por día. Sin datos devuelve cero, nunca error.
type StockPurchases struct {
	repo repository.PurchaseRepository
}

// NewStockPurchases construye los adaptadores sobre el repositorio de compras.
func NewStockPurchases(repo repository.PurchaseRepository) *StockPurchases {
	return &StockPurchases{repo: repo}
}

// GetRollsPurchases panes comprados (gastos marcados como reposición de stock).
func (p *StockPurchases) GetRollsPurchases(ctx context.Context, shiftDay string) (decimal.Decimal, error) {
	return p.repo.RollsPurchased(ctx, shiftDay)
}

// GetMeatPurchases gramos de carne recibidos según las planillas de entrega.
func (p *StockPurchases) GetMeatPurchases(ctx context.Context, shiftDay string) (decimal.Decimal, error) {
	return p.repo.MeatReceivedGrams(ctx, shiftDay)
}

// GetDrinksPurchases bebidas recibidas según el registro de recepción.
func (p *StockPurchases) GetDrinksPurchases(ctx context.Context, shiftDay string) (decimal.Decimal, error) {
	return p.repo.DrinksReceived(ctx, shiftDay)
}

// ForKind despacha al adaptador del tipo de libro.
func (p *StockPurchases) ForKind(ctx context.Context, kind entity.LedgerKind, shiftDay string) (decimal.Decimal, error) {
	switch kind {
	case entity.LedgerRolls:
		return p.GetRollsPurchases(ctx, shiftDay)
	case entity.LedgerMeat:
		return p.GetMeatPurchases(ctx, shiftDay)
	case entity.LedgerDrinks:
		return p.GetDrinksPurchases(ctx, shiftDay)
	default:
		return decimal.Zero, fmt.Errorf("tipo de libro %q: %w", kind, domain.ErrInvalidInput)
	}
}
