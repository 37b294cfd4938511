package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SoldItemRepository puerto de persistencia para unidades vendidas.
type SoldItemRepository interface {
	// ReplaceShiftDay borra todas las unidades del día y crea items. Debe ejecutarse
	// dentro de la transacción del día (TxRunner.RunShift); nunca toca otros días.
	ReplaceShiftDay(ctx context.Context, shiftDay string, items []*entity.SoldItem) error
	ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.SoldItem, error)
	CountByShiftDay(ctx context.Context, shiftDay string) (int, error)
	// SumNetByShiftDay suma NetAmount del día y devuelve también la cantidad de unidades.
	SumNetByShiftDay(ctx context.Context, shiftDay string) (decimal.Decimal, int, error)
	// ListShiftDays días distintos con al menos una unidad, entre fromDay y toDay inclusive.
	ListShiftDays(ctx context.Context, fromDay, toDay string) ([]string, error)
}
