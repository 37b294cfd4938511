package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.ReconciliationRepository = (*ReconciliationRepo)(nil)

// ReconciliationRepo registros de conciliación sobre PostgreSQL (usable con pool o tx).
type ReconciliationRepo struct {
	q Querier
}

// NewReconciliationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReconciliationRepository(q Querier) *ReconciliationRepo {
	return &ReconciliationRepo{q: q}
}

// DeleteByShiftDay borra el registro del día.
func (r *ReconciliationRepo) DeleteByShiftDay(ctx context.Context, shiftDay string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM shift_reconciliations WHERE shift_day = $1`, shiftDay); err != nil {
		return fmt.Errorf("delete reconciliation %s: %w", shiftDay, err)
	}
	return nil
}

// Create inserta el registro del día. Un segundo registro para el mismo día viola la
// restricción única y se reporta como ErrConflict.
func (r *ReconciliationRepo) Create(ctx context.Context, rec *entity.ReconciliationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO shift_reconciliations (id, shift_day, pos_sales, declared_sales, sales_variance,
			declared_buns, declared_meat, has_declaration, status, sold_item_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		rec.ID, rec.ShiftDay, rec.POSSales, rec.DeclaredSales, rec.SalesVariance,
		rec.DeclaredBuns, rec.DeclaredMeat, rec.HasDeclaration, rec.Status, rec.SoldItemCount,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reconciliation %s: %w", rec.ShiftDay, domain.ErrConflict)
		}
		return fmt.Errorf("create reconciliation: %w", err)
	}
	return nil
}

// GetByShiftDay registro del día; nil si no existe.
func (r *ReconciliationRepo) GetByShiftDay(ctx context.Context, shiftDay string) (*entity.ReconciliationRecord, error) {
	query := `
		SELECT id, ` + shiftDayText + `, pos_sales, declared_sales, sales_variance, declared_buns, declared_meat,
			has_declaration, status, sold_item_count, created_at
		FROM shift_reconciliations WHERE shift_day = $1`
	var rec entity.ReconciliationRecord
	err := r.q.QueryRow(ctx, query, shiftDay).Scan(
		&rec.ID, &rec.ShiftDay, &rec.POSSales, &rec.DeclaredSales, &rec.SalesVariance, &rec.DeclaredBuns,
		&rec.DeclaredMeat, &rec.HasDeclaration, &rec.Status, &rec.SoldItemCount, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reconciliation: %w", err)
	}
	return &rec, nil
}

// CountByShiftDay registros del día (0 o 1 en estado sano).
func (r *ReconciliationRepo) CountByShiftDay(ctx context.Context, shiftDay string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM shift_reconciliations WHERE shift_day = $1`, shiftDay).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reconciliation: %w", err)
	}
	return n, nil
}
