// Package backfill orquesta el pipeline por día (sync → unidades → libros → conciliación)
// sobre rangos de días y en la recuperación perezosa de un día.
package backfill

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/pkg/logger"
)

// Pasos del pipeline. sold_items, ledger:<tipo> y reconciliation los registran en shift_runs
// los propios casos de uso; el orquestador registra sync.
const (
	StepLock           = "lock"
	StepSync           = runlog.StepSync
	StepSoldItems      = runlog.StepSoldItems
	StepLedger         = "ledger"
	StepReconciliation = runlog.StepReconciliation
)

// Options parámetros del orquestador.
type Options struct {
	// MaxConcurrentDays días procesados en paralelo por un backfill; mínimo 1.
	MaxConcurrentDays int
	// SyncBeforeDerive sincroniza el POS antes de derivar cada día del backfill.
	SyncBeforeDerive bool
	// MaxRangeDays tamaño máximo de un rango; 0 usa 366.
	MaxRangeDays int
}

// Orchestrator ejecuta los pasos del pipeline en orden fijo. Cada paso es idempotente, así que
// reintentar un día converge al mismo estado.
type Orchestrator struct {
	syncer     Syncer
	deriver    Deriver
	ledgers    LedgerComputer
	reconciler Reconciler

	soldItems  repository.SoldItemRepository
	ledgerRepo repository.LedgerRepository
	runs       *runlog.Recorder
	locker     ports.DayLocker

	opts Options
	log  zerolog.Logger
}

// NewOrchestrator construye el orquestador. syncer puede ser nil (sin POS configurado);
// locker nil usa un LocalDayLocker; runs nil no registra el paso sync.
func NewOrchestrator(
	syncer Syncer,
	deriver Deriver,
	ledgers LedgerComputer,
	reconciler Reconciler,
	soldItems repository.SoldItemRepository,
	ledgerRepo repository.LedgerRepository,
	runs *runlog.Recorder,
	locker ports.DayLocker,
	opts Options,
	log zerolog.Logger,
) *Orchestrator {
	if locker == nil {
		locker = NewLocalDayLocker()
	}
	if opts.MaxConcurrentDays < 1 {
		opts.MaxConcurrentDays = 1
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 366
	}
	return &Orchestrator{
		syncer:     syncer,
		deriver:    deriver,
		ledgers:    ledgers,
		reconciler: reconciler,
		soldItems:  soldItems,
		ledgerRepo: ledgerRepo,
		runs:       runs,
		locker:     locker,
		opts:       opts,
		log:        log.With().Str("component", "backfill").Logger(),
	}
}

// Backfill recorre [start, end] día por día. Un día fallido no detiene a los demás; al cancelar
// ctx los días no iniciados quedan como "cancelled" y los ya terminados quedan completos.
func (o *Orchestrator) Backfill(ctx context.Context, start, end shift.Day) (*dto.BackfillResultDTO, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("rango %s..%s: %w", start, end, domain.ErrInvalidShiftDay)
	}
	days := shift.Range(start, end)
	if len(days) > o.opts.MaxRangeDays {
		return nil, fmt.Errorf("rango de %d días supera el máximo de %d: %w", len(days), o.opts.MaxRangeDays, domain.ErrInvalidInput)
	}

	results := make([]dto.DayResultDTO, len(days))
	var g errgroup.Group
	g.SetLimit(o.opts.MaxConcurrentDays)
	for i, day := range days {
		if ctx.Err() != nil {
			results[i] = dto.DayResultDTO{ShiftDay: day.Key(), Status: dto.DayStatusCancelled}
			continue
		}
		i, day := i, day
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = dto.DayResultDTO{ShiftDay: day.Key(), Status: dto.DayStatusCancelled}
				return nil
			}
			results[i] = o.runDay(ctx, day, o.opts.SyncBeforeDerive)
			return nil
		})
	}
	_ = g.Wait()

	out := &dto.BackfillResultDTO{Start: start.Key(), End: end.Key(), Days: results}
	for _, r := range results {
		switch r.Status {
		case dto.DayStatusOK:
			out.Succeeded++
		case dto.DayStatusFailed:
			out.Failed++
		case dto.DayStatusCancelled:
			out.Cancelled = true
		}
	}
	o.log.Info().
		Str("from", start.Key()).
		Str("to", end.Key()).
		Int("succeeded", out.Succeeded).
		Int("failed", out.Failed).
		Bool("cancelled", out.Cancelled).
		Msg("backfill terminado")
	return out, nil
}

// EnsureShift recuperación perezosa: si el día ya tiene unidades vendidas y los tres libros no
// hace nada; si no, sincroniza el POS, deriva las unidades y calcula los libros, en ese orden.
// Los errores se propagan al llamador.
func (o *Orchestrator) EnsureShift(ctx context.Context, day shift.Day) (*dto.EnsureResultDTO, error) {
	key := day.Key()
	unlock, err := o.locker.Lock(ctx, key)
	if err != nil {
		return nil, domain.WrapShift(err, key, StepLock)
	}
	defer unlock()

	res := &dto.EnsureResultDTO{ShiftDay: key}
	entries, done, err := o.computed(ctx, key)
	if err != nil {
		return nil, domain.WrapShift(err, key, "ensure")
	}
	if done {
		res.AlreadyComputed = true
		res.Ledgers = toDTOs(entries)
		return res, nil
	}

	if o.syncer != nil {
		if _, err := o.syncer.SyncShift(ctx, day); err != nil {
			return nil, o.stepFailed(ctx, key, StepSync, err)
		}
		o.runs.Record(ctx, key, StepSync, nil)
		res.Synced = true
	}

	n, err := o.deriver.DeriveDay(ctx, day)
	if err != nil {
		return nil, o.stepFailed(ctx, key, StepSoldItems, err)
	}
	res.ItemsCreated = n

	entries, err = o.ledgers.ComputeAll(ctx, day)
	if err != nil {
		return nil, o.stepFailed(ctx, key, StepLedger, err)
	}
	res.Ledgers = toDTOs(entries)

	log := logger.ForShift(o.log, key)
	log.Info().Bool("synced", res.Synced).Int("items", n).Msg("día asegurado")
	return res, nil
}

// RunDay ejecuta el pipeline completo de un día.
func (o *Orchestrator) RunDay(ctx context.Context, day shift.Day, withSync bool) dto.DayResultDTO {
	return o.runDay(ctx, day, withSync)
}

func (o *Orchestrator) runDay(ctx context.Context, day shift.Day, withSync bool) dto.DayResultDTO {
	key := day.Key()
	res := dto.DayResultDTO{ShiftDay: key}

	unlock, err := o.locker.Lock(ctx, key)
	if err != nil {
		return o.dayFailed(res, StepLock, domain.WrapShift(err, key, StepLock))
	}
	defer unlock()

	if withSync && o.syncer != nil {
		if _, err := o.syncer.SyncShift(ctx, day); err != nil {
			return o.dayFailed(res, StepSync, o.stepFailed(ctx, key, StepSync, err))
		}
		o.runs.Record(ctx, key, StepSync, nil)
	}

	n, err := o.deriver.DeriveDay(ctx, day)
	if err != nil {
		return o.dayFailed(res, StepSoldItems, o.stepFailed(ctx, key, StepSoldItems, err))
	}
	res.ItemsCreated = n

	entries, err := o.ledgers.ComputeAll(ctx, day)
	res.LedgersWritten = len(entries)
	if err != nil {
		return o.dayFailed(res, StepLedger, o.stepFailed(ctx, key, StepLedger, err))
	}

	rec, err := o.reconciler.ReconcileDay(ctx, day)
	if err != nil {
		return o.dayFailed(res, StepReconciliation, o.stepFailed(ctx, key, StepReconciliation, err))
	}
	res.Reconciled = rec != nil

	res.Status = dto.DayStatusOK
	log := logger.ForShift(o.log, key)
	log.Debug().Int("items", n).Msg("día recalculado")
	return res
}

// computed indica si el día ya tiene unidades vendidas y los tres libros.
func (o *Orchestrator) computed(ctx context.Context, key string) ([]*entity.LedgerEntry, bool, error) {
	n, err := o.soldItems.CountByShiftDay(ctx, key)
	if err != nil || n == 0 {
		return nil, false, err
	}
	entries, err := o.ledgerRepo.ListByShiftDay(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if len(entries) < len(entity.LedgerKinds) {
		return nil, false, nil
	}
	return entries, true, nil
}

// stepFailed devuelve el error con día y paso. Solo el fallo de sync se registra aquí; los
// demás pasos ya quedaron registrados por su caso de uso.
func (o *Orchestrator) stepFailed(ctx context.Context, key, step string, err error) error {
	err = domain.WrapShift(err, key, step)
	if step == StepSync {
		o.runs.Record(ctx, key, step, err)
	}
	log := logger.ForShift(o.log, key)
	ev := log.Warn()
	if errors.Is(err, domain.ErrInvariantViolation) {
		ev = log.Error()
	}
	ev.Err(err).Str("step", step).Str("error_kind", domain.ErrorKind(err)).Msg("paso del pipeline fallido")
	return err
}

func (o *Orchestrator) dayFailed(res dto.DayResultDTO, step string, err error) dto.DayResultDTO {
	res.Status = dto.DayStatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		res.Status = dto.DayStatusCancelled
	}
	res.Step = step
	var se *domain.ShiftError
	if errors.As(err, &se) && se.Step != "" {
		res.Step = se.Step
	}
	res.ErrorKind = domain.ErrorKind(err)
	res.Error = err.Error()
	return res
}

func toDTOs(entries []*entity.LedgerEntry) []dto.LedgerEntryDTO {
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerFromEntity(e))
	}
	return out
}
