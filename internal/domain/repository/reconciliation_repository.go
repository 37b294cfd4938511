package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// ReconciliationRepository puerto para los registros de conciliación (uno por día).
type ReconciliationRepository interface {
	// DeleteByShiftDay borra el registro del día; se usa antes de Create en la misma tx.
	DeleteByShiftDay(ctx context.Context, shiftDay string) error
	Create(ctx context.Context, rec *entity.ReconciliationRecord) error
	GetByShiftDay(ctx context.Context, shiftDay string) (*entity.ReconciliationRecord, error)
	CountByShiftDay(ctx context.Context, shiftDay string) (int, error)
}
