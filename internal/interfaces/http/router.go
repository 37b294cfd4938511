package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/shift-ledger/internal/application/backfill"
	"github.com/jhoicas/shift-ledger/internal/application/ingestion"
	"github.com/jhoicas/shift-ledger/internal/application/ledger"
	"github.com/jhoicas/shift-ledger/internal/application/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/application/shiftreport"
	"github.com/jhoicas/shift-ledger/internal/application/solditems"
	"github.com/jhoicas/shift-ledger/internal/application/variance"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver       *shift.Resolver
	Derive         *solditems.DeriveUseCase
	Ledgers        *ledger.EngineUseCase
	Reconciliation *reconciliation.RebuildUseCase
	Variance       *variance.ReportUseCase
	Backfill       *backfill.Orchestrator
	Report         *shiftreport.ReportUseCase
	Sync           *ingestion.SyncUseCase // nil si no hay POS configurado
	Audit          *ingestion.AuditLog
	Source         string
	StaleAfter     time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	shiftHandler := NewShiftHandler(deps.Resolver, deps.Derive, deps.Ledgers, deps.Reconciliation, deps.Variance, deps.Backfill, deps.Report)
	ingestionHandler := NewIngestionHandler(deps.Sync, deps.Audit, deps.Source, deps.StaleAfter)

	api.Get("/shift-day", shiftHandler.ResolveShiftDay)

	// Operaciones por rango
	shifts := api.Group("/shifts")
	shifts.Post("/derive", shiftHandler.DeriveSoldItems)
	shifts.Post("/reconcile", shiftHandler.RebuildReconciliation)
	shifts.Post("/backfill", shiftHandler.Backfill)

	// Operaciones por día
	shifts.Get("/:day", shiftHandler.GetReport)
	shifts.Get("/:day/variance", shiftHandler.GetVariance)
	shifts.Get("/:day/reconciliation", shiftHandler.GetReconciliation)
	shifts.Get("/:day/ingestion", ingestionHandler.ListAudits)
	shifts.Post("/:day/ensure", shiftHandler.EnsureShift)
	shifts.Post("/:day/sync", ingestionHandler.SyncShift)
	shifts.Post("/:day/ledgers/:kind", shiftHandler.ComputeLedger)
	shifts.Post("/:day/baseline", shiftHandler.ConfirmBaseline)

	// Ingesta
	api.Get("/ingestion/freshness", ingestionHandler.Freshness)
}
