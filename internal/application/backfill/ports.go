package backfill

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// Syncer ingesta POS de un día (ingestion.SyncUseCase).
type Syncer interface {
	SyncShift(ctx context.Context, day shift.Day) (*dto.SyncResultDTO, error)
}

// Deriver reemplaza las unidades vendidas de un día (solditems.DeriveUseCase).
type Deriver interface {
	DeriveDay(ctx context.Context, day shift.Day) (int, error)
}

// LedgerComputer calcula los tres libros de un día (ledger.EngineUseCase).
type LedgerComputer interface {
	ComputeAll(ctx context.Context, day shift.Day) ([]*entity.LedgerEntry, error)
}

// Reconciler reemplaza la conciliación de un día (reconciliation.RebuildUseCase).
type Reconciler interface {
	ReconcileDay(ctx context.Context, day shift.Day) (*entity.ReconciliationRecord, error)
}
