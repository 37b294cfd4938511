package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// IngestionAuditRepository registro append-only de sincronizaciones.
// No expone Update ni Delete.
type IngestionAuditRepository interface {
	Append(ctx context.Context, rec *entity.IngestionAuditRecord) error
	// LatestSuccessful último intento exitoso de la fuente; nil si nunca hubo uno.
	LatestSuccessful(ctx context.Context, source string) (*entity.IngestionAuditRecord, error)
	ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.IngestionAuditRecord, error)
}
