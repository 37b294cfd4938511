package ports

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

// ShiftRepos repositorios atados a la transacción de un día de turno.
type ShiftRepos struct {
	SoldItems       repository.SoldItemRepository
	Ledgers         repository.LedgerRepository
	Reconciliations repository.ReconciliationRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con alcance (scope, día).
// Garantiza que el reemplazo/upsert de un día se aplique todo o nada, y que dos
// ejecuciones concurrentes del mismo (scope, día) no se intercalen.
type TxRunner interface {
	RunShift(ctx context.Context, scope, shiftDay string, fn func(repos ShiftRepos) error) error
}

// DayLocker exclusión mutua por día de turno entre disparadores (cron, admin, ensure perezoso).
// unlock debe llamarse siempre que err sea nil.
type DayLocker interface {
	Lock(ctx context.Context, shiftDay string) (unlock func(), err error)
}
