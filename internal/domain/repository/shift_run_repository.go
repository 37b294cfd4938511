package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// ShiftRunRepository último estado de cada paso del pipeline por día (upsert por día+paso).
type ShiftRunRepository interface {
	Record(ctx context.Context, run *entity.ShiftRun) error
	ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.ShiftRun, error)
}
