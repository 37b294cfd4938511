package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// LedgerRepository puerto para los libros de stock (una fila por kind × día).
type LedgerRepository interface {
	// Upsert inserta o actualiza por la clave compuesta (kind, shift_day).
	Upsert(ctx context.Context, entry *entity.LedgerEntry) error
	Get(ctx context.Context, kind entity.LedgerKind, shiftDay string) (*entity.LedgerEntry, error)
	CountByKey(ctx context.Context, kind entity.LedgerKind, shiftDay string) (int, error)
	ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.LedgerEntry, error)
}

// BaselineRepository confirmaciones de inventario inicial hechas por operadores.
type BaselineRepository interface {
	Upsert(ctx context.Context, b *entity.BaselineConfirmation) error
	Get(ctx context.Context, kind entity.LedgerKind, shiftDay string) (*entity.BaselineConfirmation, error)
}
