// Package scheduler trabajos periódicos: recálculo nocturno de los últimos días de turno y
// sincronización POS del turno en curso. Es el único lugar que calcula "hoy".
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/pkg/config"
)

// Backfiller recalcula un rango de días de turno.
type Backfiller interface {
	Backfill(ctx context.Context, start, end shift.Day) (*dto.BackfillResultDTO, error)
}

// ShiftSyncer sincroniza los recibos POS de un día.
type ShiftSyncer interface {
	SyncShift(ctx context.Context, day shift.Day) (*dto.SyncResultDTO, error)
}

// ShiftJobs agenda el recálculo y la sincronización.
type ShiftJobs struct {
	scheduler *gocron.Scheduler
	cfg       config.SchedulerConfig
	resolver  *shift.Resolver
	backfill  Backfiller
	sync      ShiftSyncer
	log       zerolog.Logger
	now       func() time.Time
}

// NewShiftJobs construye el agendador. sync puede ser nil si no hay POS configurado.
func NewShiftJobs(cfg config.SchedulerConfig, resolver *shift.Resolver, backfill Backfiller, sync ShiftSyncer, log zerolog.Logger) *ShiftJobs {
	if cfg.LookbackDays < 1 {
		cfg.LookbackDays = 1
	}
	log = log.With().Str("component", "scheduler").Logger()
	log.Info().
		Bool("enabled", cfg.Enabled).
		Str("recompute_cron", cfg.RecomputeCron).
		Int("lookback_days", cfg.LookbackDays).
		Bool("sync_enabled", cfg.SyncEnabled).
		Str("sync_cron", cfg.SyncCron).
		Msg("configuración del agendador cargada")

	return &ShiftJobs{
		scheduler: gocron.NewScheduler(resolver.Location()),
		cfg:       cfg,
		resolver:  resolver,
		backfill:  backfill,
		sync:      sync,
		log:       log,
		now:       time.Now,
	}
}

// Start registra los trabajos y arranca el agendador. Se detiene cuando ctx se cancela.
func (j *ShiftJobs) Start(ctx context.Context) error {
	if !j.cfg.Enabled {
		j.log.Info().Msg("agendador deshabilitado por configuración")
		return nil
	}

	if _, err := j.scheduler.Cron(j.cfg.RecomputeCron).SingletonMode().Do(func() {
		_, _ = j.RunRecompute(ctx)
	}); err != nil {
		return fmt.Errorf("agendar recálculo: %w", err)
	}

	if j.cfg.SyncEnabled && j.sync != nil {
		if _, err := j.scheduler.Cron(j.cfg.SyncCron).SingletonMode().Do(func() {
			_ = j.RunSync(ctx)
		}); err != nil {
			return fmt.Errorf("agendar sincronización POS: %w", err)
		}
	}

	j.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		j.log.Info().Msg("deteniendo agendador")
		j.scheduler.Stop()
	}()
	return nil
}

// Jobs cantidad de trabajos registrados.
func (j *ShiftJobs) Jobs() int { return len(j.scheduler.Jobs()) }

// RecomputeRange últimos LookbackDays días de turno cerrados, terminando en el día anterior
// al turno en curso.
func (j *ShiftJobs) RecomputeRange() (start, end shift.Day) {
	end = j.resolver.Resolve(j.now()).Prev()
	start = end
	for i := 1; i < j.cfg.LookbackDays; i++ {
		start = start.Prev()
	}
	return start, end
}

// RunRecompute ejecuta un backfill sobre RecomputeRange.
func (j *ShiftJobs) RunRecompute(ctx context.Context) (*dto.BackfillResultDTO, error) {
	start, end := j.RecomputeRange()
	begin := j.now()
	res, err := j.backfill.Backfill(ctx, start, end)
	if err != nil {
		j.log.Error().Err(err).Str("from", start.Key()).Str("to", end.Key()).Msg("recálculo programado falló")
		return nil, err
	}
	j.log.Info().
		Str("from", start.Key()).
		Str("to", end.Key()).
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Dur("elapsed", j.now().Sub(begin)).
		Msg("recálculo programado terminado")
	return res, nil
}

// RunSync sincroniza el turno en curso.
func (j *ShiftJobs) RunSync(ctx context.Context) error {
	if j.sync == nil {
		return nil
	}
	day := j.resolver.Resolve(j.now())
	res, err := j.sync.SyncShift(ctx, day)
	if err != nil {
		j.log.Warn().Err(err).Str("shift_day", day.Key()).Msg("sincronización programada falló")
		return err
	}
	j.log.Debug().Str("shift_day", day.Key()).Int("receipts", res.Receipts).Msg("sincronización programada")
	return nil
}
