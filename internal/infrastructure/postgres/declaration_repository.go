package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.DeclarationRepository = (*DeclarationRepo)(nil)

// DeclarationRepo formularios de cierre del personal (solo lectura).
type DeclarationRepo struct {
	q Querier
}

// NewDeclarationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeclarationRepository(q Querier) *DeclarationRepo {
	return &DeclarationRepo{q: q}
}

// GetByShiftDay declaración del día; (nil, nil) si el personal no envió el formulario.
func (r *DeclarationRepo) GetByShiftDay(ctx context.Context, shiftDay string) (*entity.DeclaredShift, error) {
	query := `
		SELECT ` + shiftDayText + `, sales_total, rolls_end, meat_end_grams, drinks_end, submitted_by, submitted_at
		FROM shift_declarations WHERE shift_day = $1`
	var d entity.DeclaredShift
	err := r.q.QueryRow(ctx, query, shiftDay).Scan(
		&d.ShiftDay, &d.SalesTotal, &d.RollsEnd, &d.MeatEndGrams, &d.DrinksEnd, &d.SubmittedBy, &d.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get declaration %s: %w", shiftDay, err)
	}
	return &d, nil
}
