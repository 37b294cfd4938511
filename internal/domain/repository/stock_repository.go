package repository

import (
	"context"
	"time"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// StockSnapshotRepository stock vivo por ingrediente.
type StockSnapshotRepository interface {
	ListByIngredientIDs(ctx context.Context, ids []string) (map[string]*entity.StockSnapshot, error)
}

// ConsumptionEventRepository bitácora de deltas firmados contra el stock vivo.
type ConsumptionEventRepository interface {
	// ListByWindow eventos con OccurredAt en [from, to).
	ListByWindow(ctx context.Context, from, to time.Time) ([]*entity.ConsumptionEvent, error)
}
