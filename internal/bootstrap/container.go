// Package bootstrap arma el grafo de dependencias compartido por cmd/api y cmd/ledgerctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shift-ledger/internal/application/backfill"
	"github.com/jhoicas/shift-ledger/internal/application/ingestion"
	"github.com/jhoicas/shift-ledger/internal/application/ledger"
	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/application/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/application/shiftreport"
	"github.com/jhoicas/shift-ledger/internal/application/solditems"
	"github.com/jhoicas/shift-ledger/internal/application/variance"
	rules "github.com/jhoicas/shift-ledger/internal/domain/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	severity "github.com/jhoicas/shift-ledger/internal/domain/variance"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/pos"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/shift-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/shift-ledger/internal/interfaces/http"
	"github.com/jhoicas/shift-ledger/internal/scheduler"
	"github.com/jhoicas/shift-ledger/pkg/config"
)

// Container casos de uso listos para usar.
type Container struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Resolver *shift.Resolver

	Audit          *ingestion.AuditLog
	Sync           *ingestion.SyncUseCase // nil sin POS_TOKEN
	Derive         *solditems.DeriveUseCase
	Ledgers        *ledger.EngineUseCase
	Reconciliation *reconciliation.RebuildUseCase
	Variance       *variance.ReportUseCase
	Backfill       *backfill.Orchestrator
	Report         *shiftreport.ReportUseCase

	rdb *goredis.Client
}

// New abre Postgres (y Redis si está habilitado) y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	policy, err := solditems.ParseDiscountPolicy(cfg.Ledger.DiscountPolicy)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	c := &Container{
		Config:   cfg,
		Pool:     pool,
		Resolver: shift.NewResolver(cfg.Shift.UTCOffsetHours, cfg.Shift.CutoffHour),
	}

	receiptRepo := postgres.NewReceiptRepository(pool)
	soldItemRepo := postgres.NewSoldItemRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	declarationRepo := postgres.NewDeclarationRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	baselineRepo := postgres.NewBaselineRepository(pool)
	reconciliationRepo := postgres.NewReconciliationRepository(pool)
	runRepo := postgres.NewShiftRunRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	c.Audit = ingestion.NewAuditLog(postgres.NewIngestionAuditRepository(pool))
	var syncer backfill.Syncer
	if cfg.POS.Token != "" {
		c.Sync = ingestion.NewSyncUseCase(pos.NewClient(cfg.POS), receiptRepo, c.Audit, c.Resolver, cfg.POS.Source, log)
		syncer = c.Sync
	} else {
		log.Warn().Msg("POS_TOKEN vacío: sincronización POS deshabilitada")
	}

	runs := runlog.NewRecorder(runRepo, log)
	c.Derive = solditems.NewDeriveUseCase(receiptRepo, recipeRepo, txRunner, runs, c.Resolver, policy, log)
	c.Ledgers = ledger.NewEngineUseCase(
		soldItemRepo, recipeRepo, declarationRepo, baselineRepo,
		ledger.NewStockPurchases(postgres.NewPurchaseRepository(pool)), txRunner, runs, log,
	)
	c.Reconciliation = reconciliation.NewRebuildUseCase(
		soldItemRepo, declarationRepo, reconciliationRepo, txRunner, runs,
		rules.Thresholds{WarningAbove: cfg.Reconciliation.WarningAbove, FailAbove: cfg.Reconciliation.FailAbove},
		log,
	)
	c.Variance = variance.NewReportUseCase(
		postgres.NewConsumptionEventRepository(pool), postgres.NewStockSnapshotRepository(pool), c.Resolver,
		severity.Thresholds{GreenMax: cfg.Variance.GreenMax, YellowMax: cfg.Variance.YellowMax},
		log,
	)
	c.Report = shiftreport.NewReportUseCase(ledgerRepo, reconciliationRepo, runRepo)

	locker, err := c.dayLocker(ctx, log)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Backfill = backfill.NewOrchestrator(
		syncer, c.Derive, c.Ledgers, c.Reconciliation,
		soldItemRepo, ledgerRepo, runs, locker,
		backfill.Options{
			MaxConcurrentDays: cfg.Scheduler.MaxConcurrentDays,
			SyncBeforeDerive:  cfg.Scheduler.SyncBeforeDerive,
		},
		log,
	)
	return c, nil
}

// dayLocker Redis con respaldo local, o solo local si Redis está deshabilitado.
func (c *Container) dayLocker(ctx context.Context, log zerolog.Logger) (ports.DayLocker, error) {
	local := backfill.NewLocalDayLocker()
	if !c.Config.Redis.Enabled {
		return local, nil
	}
	rdb, err := infraredis.NewClient(ctx, c.Config.Redis)
	if err != nil {
		return nil, fmt.Errorf("conexión a Redis: %w", err)
	}
	c.rdb = rdb
	wait := c.Config.Redis.LockTTL / 4
	return infraredis.NewDayLocker(rdb, c.Config.Redis.LockTTL, wait, local, log.With().Str("component", "lock").Logger()), nil
}

// RouterDeps dependencias de las rutas HTTP.
func (c *Container) RouterDeps() httpRouter.RouterDeps {
	return httpRouter.RouterDeps{
		Resolver:       c.Resolver,
		Derive:         c.Derive,
		Ledgers:        c.Ledgers,
		Reconciliation: c.Reconciliation,
		Variance:       c.Variance,
		Backfill:       c.Backfill,
		Report:         c.Report,
		Sync:           c.Sync,
		Audit:          c.Audit,
		Source:         c.Config.POS.Source,
		StaleAfter:     c.Config.Scheduler.StaleAfter,
	}
}

// Scheduler trabajos periódicos sobre el orquestador.
func (c *Container) Scheduler(log zerolog.Logger) *scheduler.ShiftJobs {
	var syncer scheduler.ShiftSyncer
	if c.Sync != nil {
		syncer = c.Sync
	}
	return scheduler.NewShiftJobs(c.Config.Scheduler, c.Resolver, c.Backfill, syncer, log)
}

// Close libera las conexiones.
func (c *Container) Close() {
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
