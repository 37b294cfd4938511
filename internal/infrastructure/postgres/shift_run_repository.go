package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.ShiftRunRepository = (*ShiftRunRepo)(nil)

// ShiftRunRepo estado del pipeline por (día, paso).
type ShiftRunRepo struct {
	q Querier
}

// NewShiftRunRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRunRepository(q Querier) *ShiftRunRepo {
	return &ShiftRunRepo{q: q}
}

// Record guarda el último resultado del paso; reemplaza el anterior.
func (r *ShiftRunRepo) Record(ctx context.Context, run *entity.ShiftRun) error {
	query := `
		INSERT INTO shift_runs (shift_day, step, status, error_kind, error, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (shift_day, step)
		DO UPDATE SET status = EXCLUDED.status, error_kind = EXCLUDED.error_kind,
			error = EXCLUDED.error, finished_at = EXCLUDED.finished_at`
	_, err := r.q.Exec(ctx, query, run.ShiftDay, run.Step, run.Status, run.ErrorKind, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("record shift run %s %s: %w", run.ShiftDay, run.Step, err)
	}
	return nil
}

// ListByShiftDay pasos registrados para el día, ordenados por nombre.
func (r *ShiftRunRepo) ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.ShiftRun, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+shiftDayText+`, step, status, error_kind, error, finished_at
		FROM shift_runs WHERE shift_day = $1 ORDER BY step`, shiftDay)
	if err != nil {
		return nil, fmt.Errorf("list shift runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ShiftRun
	for rows.Next() {
		var run entity.ShiftRun
		if err := rows.Scan(&run.ShiftDay, &run.Step, &run.Status, &run.ErrorKind, &run.Error, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan shift run: %w", err)
		}
		list = append(list, &run)
	}
	return list, rows.Err()
}
