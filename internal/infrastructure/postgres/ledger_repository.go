package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)
var _ repository.BaselineRepository = (*BaselineRepo)(nil)

// LedgerRepo libros de stock sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, kind, ` + shiftDayText + `, estimated, purchased, actual_end, starting_implied,
	baseline_source, variance, missing_mappings, created_at, updated_at`

// Upsert inserta o actualiza por (kind, shift_day). Si los valores no cambian, updated_at
// tampoco: recalcular con las mismas entradas deja la fila idéntica.
func (r *LedgerRepo) Upsert(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	missing := e.MissingMappings
	if missing == nil {
		missing = []string{}
	}
	query := `
		INSERT INTO stock_ledgers (id, kind, shift_day, estimated, purchased, actual_end, starting_implied,
			baseline_source, variance, missing_mappings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (kind, shift_day) DO UPDATE SET
			estimated = EXCLUDED.estimated,
			purchased = EXCLUDED.purchased,
			actual_end = EXCLUDED.actual_end,
			starting_implied = EXCLUDED.starting_implied,
			baseline_source = EXCLUDED.baseline_source,
			variance = EXCLUDED.variance,
			missing_mappings = EXCLUDED.missing_mappings,
			updated_at = CASE
				WHEN (stock_ledgers.estimated, stock_ledgers.purchased, stock_ledgers.actual_end,
					stock_ledgers.starting_implied, stock_ledgers.baseline_source, stock_ledgers.variance,
					stock_ledgers.missing_mappings)
					IS DISTINCT FROM
					(EXCLUDED.estimated, EXCLUDED.purchased, EXCLUDED.actual_end,
					EXCLUDED.starting_implied, EXCLUDED.baseline_source, EXCLUDED.variance,
					EXCLUDED.missing_mappings)
				THEN now() ELSE stock_ledgers.updated_at END
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		e.ID, string(e.Kind), e.ShiftDay, e.Estimated, e.Purchased, e.ActualEnd, e.StartingImplied,
		e.BaselineSource, e.Variance, missing,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert ledger %s %s: %w", e.Kind, e.ShiftDay, err)
	}
	return nil
}

// Get obtiene la fila de (kind, día); nil si no existe.
func (r *LedgerRepo) Get(ctx context.Context, kind entity.LedgerKind, shiftDay string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledgers WHERE kind = $1 AND shift_day = $2`
	e, err := scanLedger(r.q.QueryRow(ctx, query, string(kind), shiftDay))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return e, nil
}

// CountByKey filas para (kind, día). Más de una indica un camino de escritura no idempotente.
func (r *LedgerRepo) CountByKey(ctx context.Context, kind entity.LedgerKind, shiftDay string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_ledgers WHERE kind = $1 AND shift_day = $2`,
		string(kind), shiftDay).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger: %w", err)
	}
	return n, nil
}

// ListByShiftDay libros del día ordenados por kind.
func (r *LedgerRepo) ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ledgerColumns+` FROM stock_ledgers WHERE shift_day = $1 ORDER BY kind`, shiftDay)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedger(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var kind string
	err := row.Scan(&e.ID, &kind, &e.ShiftDay, &e.Estimated, &e.Purchased, &e.ActualEnd, &e.StartingImplied,
		&e.BaselineSource, &e.Variance, &e.MissingMappings, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Kind = entity.LedgerKind(kind)
	return &e, nil
}

// BaselineRepo confirmaciones de inventario inicial sobre PostgreSQL.
type BaselineRepo struct {
	q Querier
}

// NewBaselineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBaselineRepository(q Querier) *BaselineRepo {
	return &BaselineRepo{q: q}
}

// Upsert registra o reemplaza la confirmación de (kind, día).
func (r *BaselineRepo) Upsert(ctx context.Context, b *entity.BaselineConfirmation) error {
	query := `
		INSERT INTO baseline_confirmations (kind, shift_day, quantity, confirmed_by, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind, shift_day)
		DO UPDATE SET quantity = EXCLUDED.quantity, confirmed_by = EXCLUDED.confirmed_by, confirmed_at = EXCLUDED.confirmed_at`
	_, err := r.q.Exec(ctx, query, string(b.Kind), b.ShiftDay, b.Quantity, b.ConfirmedBy, b.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}

// Get confirmación de (kind, día); nil si no hay.
func (r *BaselineRepo) Get(ctx context.Context, kind entity.LedgerKind, shiftDay string) (*entity.BaselineConfirmation, error) {
	query := `
		SELECT kind, ` + shiftDayText + `, quantity, confirmed_by, confirmed_at
		FROM baseline_confirmations WHERE kind = $1 AND shift_day = $2`
	var b entity.BaselineConfirmation
	var k string
	err := r.q.QueryRow(ctx, query, string(kind), shiftDay).Scan(&k, &b.ShiftDay, &b.Quantity, &b.ConfirmedBy, &b.ConfirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get baseline: %w", err)
	}
	b.Kind = entity.LedgerKind(k)
	return &b, nil
}
