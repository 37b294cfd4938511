package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// DeclarationRepository formularios de cierre del personal. Devuelve (nil, nil) si no hay envío.
type DeclarationRepository interface {
	GetByShiftDay(ctx context.Context, shiftDay string) (*entity.DeclaredShift, error)
}
