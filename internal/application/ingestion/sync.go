package ingestion

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// SyncUseCase trae del POS los recibos de un día de turno, los normaliza y los registra.
// Cada intento, exitoso o no, queda en la bitácora de ingesta.
type SyncUseCase struct {
	feed       ReceiptFeed
	receipts   repository.ReceiptRepository
	audit      *AuditLog
	normalizer *Normalizer
	resolver   *shift.Resolver
	source     string
	log        zerolog.Logger
	now        func() time.Time
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(
	feed ReceiptFeed,
	receipts repository.ReceiptRepository,
	audit *AuditLog,
	resolver *shift.Resolver,
	source string,
	log zerolog.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		feed:       feed,
		receipts:   receipts,
		audit:      audit,
		normalizer: NewNormalizer(source),
		resolver:   resolver,
		source:     source,
		log:        log.With().Str("component", "ingestion").Logger(),
		now:        time.Now,
	}
}

// Source nombre de la fuente sincronizada.
func (uc *SyncUseCase) Source() string { return uc.source }

// SyncShift sincroniza la ventana [03:00, 03:00) del día. Los recibos ya registrados no
// se duplican. Un fallo se devuelve como ShiftError de tipo ErrExternalSource.
func (uc *SyncUseCase) SyncShift(ctx context.Context, day shift.Day) (*dto.SyncResultDTO, error) {
	from, to := uc.resolver.Window(day)
	start := uc.now()
	rec := &entity.IngestionAuditRecord{
		Source:     uc.source,
		ShiftDay:   day.Key(),
		WindowFrom: from,
		WindowTo:   to,
	}

	res, err := uc.sync(ctx, from, to)
	rec.DurationMs = uc.now().Sub(start).Milliseconds()
	if res != nil {
		rec.Receipts, rec.LineItems, rec.Modifiers = res.Receipts, res.LineItems, res.Modifiers
	}
	if err != nil {
		rec.Status = entity.SyncStatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = entity.SyncStatusSuccess
	}

	// La bitácora usa un contexto propio: un intento cancelado también debe quedar registrado.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if auditErr := uc.audit.Record(auditCtx, rec); auditErr != nil {
		uc.log.Error().Err(auditErr).Str("shift_day", day.Key()).Msg("no se pudo registrar la auditoría de ingesta")
	}

	if err != nil {
		uc.log.Warn().Err(err).Str("shift_day", day.Key()).Int64("duration_ms", rec.DurationMs).Msg("sincronización POS fallida")
		return nil, domain.NewShiftError(domain.ErrExternalSource, day.Key(), "sync", err)
	}
	res.Source = uc.source
	res.ShiftDay = day.Key()
	res.DurationMs = rec.DurationMs
	uc.log.Info().
		Str("shift_day", day.Key()).
		Int("receipts", res.Receipts).
		Int("line_items", res.LineItems).
		Int("skipped", res.Skipped).
		Int64("duration_ms", res.DurationMs).
		Msg("sincronización POS completada")
	return res, nil
}

func (uc *SyncUseCase) sync(ctx context.Context, from, to time.Time) (*dto.SyncResultDTO, error) {
	payloads, err := uc.feed.FetchReceipts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	receipts, stats, err := uc.normalizer.Normalize(payloads)
	if err != nil {
		return nil, err
	}
	res := &dto.SyncResultDTO{
		Receipts:  stats.Receipts,
		LineItems: stats.LineItems,
		Modifiers: stats.Modifiers,
		Skipped:   stats.Skipped,
	}
	if err := uc.receipts.UpsertReceipts(ctx, receipts); err != nil {
		return res, err
	}
	return res, nil
}
