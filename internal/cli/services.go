package cli

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/bootstrap"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/shift-ledger/pkg/config"
	"github.com/jhoicas/shift-ledger/pkg/logger"
)

// Backfiller recálculo por rango y recuperación perezosa de un día.
type Backfiller interface {
	Backfill(ctx context.Context, start, end shift.Day) (*dto.BackfillResultDTO, error)
	EnsureShift(ctx context.Context, day shift.Day) (*dto.EnsureResultDTO, error)
}

// Reconciler reconstrucción de conciliaciones.
type Reconciler interface {
	RebuildReconciliation(ctx context.Context, start, end shift.Day) (*dto.ReconcileResultDTO, error)
}

// LedgerEngine cálculo de libros y confirmación de inventario inicial.
type LedgerEngine interface {
	ComputeAndUpsertLedger(ctx context.Context, kind entity.LedgerKind, day shift.Day) (*entity.LedgerEntry, error)
	ConfirmBaseline(ctx context.Context, kind entity.LedgerKind, day shift.Day, qty decimal.Decimal, by string) (*entity.LedgerEntry, error)
}

// VarianceReporter reporte de varianza por ingrediente.
type VarianceReporter interface {
	ComputeShiftVariance(ctx context.Context, day shift.Day) ([]dto.VarianceRowDTO, error)
}

// FreshnessReader frescura de la última sincronización.
type FreshnessReader interface {
	Freshness(ctx context.Context, source string, maxAge time.Duration) (*dto.FreshnessDTO, error)
}

// Services lo que necesitan los subcomandos.
type Services struct {
	Backfill       Backfiller
	Reconciliation Reconciler
	Ledgers        LedgerEngine
	Variance       VarianceReporter
	Freshness      FreshnessReader
	Migrate        func(ctx context.Context) error
	Source         string
	StaleAfter     time.Duration
}

// Opener abre los servicios; el cierre libera conexiones.
type Opener func(ctx context.Context, verbose bool) (*Services, func(), error)

// OpenFromConfig abre Postgres (y Redis) con la configuración del entorno.
func OpenFromConfig(ctx context.Context, verbose bool) (*Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level})

	c, err := bootstrap.New(ctx, cfg, log.Component("ledgerctl").Zerolog())
	if err != nil {
		return nil, nil, err
	}
	return &Services{
		Backfill:       c.Backfill,
		Reconciliation: c.Reconciliation,
		Ledgers:        c.Ledgers,
		Variance:       c.Variance,
		Freshness:      c.Audit,
		Migrate: func(ctx context.Context) error {
			return postgres.ApplySchema(ctx, c.Pool)
		},
		Source:     cfg.POS.Source,
		StaleAfter: cfg.Scheduler.StaleAfter,
	}, c.Close, nil
}
