package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.IngestionAuditRepository = (*IngestionAuditRepo)(nil)

// IngestionAuditRepo bitácora append-only de sincronizaciones.
type IngestionAuditRepo struct {
	q Querier
}

// NewIngestionAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngestionAuditRepository(q Querier) *IngestionAuditRepo {
	return &IngestionAuditRepo{q: q}
}

var auditColumns = []string{
	"id", "source", shiftDayText, "window_from", "window_to", "receipts", "line_items", "modifiers",
	"duration_ms", "status", "error", "created_at",
}

// Append agrega un registro. No hay Update ni Delete.
func (r *IngestionAuditRepo) Append(ctx context.Context, rec *entity.IngestionAuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query, args, err := psql.
		Insert("ingestion_audit").
		Columns("id", "source", "shift_day", "window_from", "window_to", "receipts", "line_items",
			"modifiers", "duration_ms", "status", "error").
		Values(rec.ID, rec.Source, rec.ShiftDay, rec.WindowFrom, rec.WindowTo, rec.Receipts, rec.LineItems,
			rec.Modifiers, rec.DurationMs, rec.Status, rec.Error).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if err := r.q.QueryRow(ctx, query, args...).Scan(&rec.CreatedAt); err != nil {
		return fmt.Errorf("append ingestion audit: %w", err)
	}
	return nil
}

// LatestSuccessful último intento exitoso de la fuente; nil si nunca hubo uno.
func (r *IngestionAuditRepo) LatestSuccessful(ctx context.Context, source string) (*entity.IngestionAuditRecord, error) {
	query, args, err := psql.
		Select(auditColumns...).
		From("ingestion_audit").
		Where(squirrel.Eq{"source": source, "status": entity.SyncStatusSuccess}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest audit query: %w", err)
	}
	rec, err := scanAudit(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest successful sync: %w", err)
	}
	return rec, nil
}

// ListByShiftDay intentos de sincronización del día, más recientes primero.
func (r *IngestionAuditRepo) ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.IngestionAuditRecord, error) {
	query, args, err := psql.
		Select(auditColumns...).
		From("ingestion_audit").
		Where(squirrel.Expr("shift_day = ?::date", shiftDay)).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit list query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ingestion audit: %w", err)
	}
	defer rows.Close()
	var list []*entity.IngestionAuditRecord
	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingestion audit: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanAudit(row pgx.Row) (*entity.IngestionAuditRecord, error) {
	var rec entity.IngestionAuditRecord
	err := row.Scan(&rec.ID, &rec.Source, &rec.ShiftDay, &rec.WindowFrom, &rec.WindowTo, &rec.Receipts,
		&rec.LineItems, &rec.Modifiers, &rec.DurationMs, &rec.Status, &rec.Error, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
