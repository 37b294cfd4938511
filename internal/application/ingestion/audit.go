package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

// AuditLog escritor/lector de la bitácora de sincronizaciones; alimenta el endpoint de frescura.
type AuditLog struct {
	repo repository.IngestionAuditRepository
	now  func() time.Time
}

// NewAuditLog construye el caso de uso.
func NewAuditLog(repo repository.IngestionAuditRepository) *AuditLog {
	return &AuditLog{repo: repo, now: time.Now}
}

// Record agrega un intento de sincronización. Solo agrega, nunca modifica.
func (a *AuditLog) Record(ctx context.Context, rec *entity.IngestionAuditRecord) error {
	if rec.Source == "" || rec.ShiftDay == "" {
		return domain.ErrInvalidInput
	}
	if rec.Status != entity.SyncStatusSuccess && rec.Status != entity.SyncStatusFailed {
		return fmt.Errorf("estado de sincronización %q: %w", rec.Status, domain.ErrInvalidInput)
	}
	return a.repo.Append(ctx, rec)
}

// LatestSuccessful última sincronización exitosa de la fuente; nil si nunca hubo.
func (a *AuditLog) LatestSuccessful(ctx context.Context, source string) (*entity.IngestionAuditRecord, error) {
	return a.repo.LatestSuccessful(ctx, source)
}

// ListByShiftDay intentos registrados para el día.
func (a *AuditLog) ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.IngestionAuditRecord, error) {
	return a.repo.ListByShiftDay(ctx, shiftDay)
}

// Freshness indica si la última sincronización exitosa es más vieja que maxAge.
// Sin ninguna sincronización exitosa la fuente está vencida.
func (a *AuditLog) Freshness(ctx context.Context, source string, maxAge time.Duration) (*dto.FreshnessDTO, error) {
	last, err := a.repo.LatestSuccessful(ctx, source)
	if err != nil {
		return nil, err
	}
	out := &dto.FreshnessDTO{Source: source, Stale: true}
	if last == nil {
		return out, nil
	}
	age := a.now().Sub(last.CreatedAt)
	at := last.CreatedAt
	out.LastSuccessAt = &at
	out.LastShiftDay = last.ShiftDay
	out.AgeSeconds = int64(age / time.Second)
	out.Stale = age > maxAge
	return out, nil
}
