package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/shift-ledger/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunShift inicia una transacción, toma el advisory lock de (scope, día) y ejecuta fn
// con repos atados a la tx. Dos recálculos simultáneos del mismo día y scope se serializan;
// días distintos no se bloquean entre sí. El lock se libera con Commit o Rollback.
func (r *TxRunner) RunShift(ctx context.Context, scope, shiftDay string, fn func(repos ports.ShiftRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, scope+":"+shiftDay); err != nil {
		return fmt.Errorf("advisory lock %s %s: %w", scope, shiftDay, err)
	}

	repos := ports.ShiftRepos{
		SoldItems:       NewSoldItemRepository(tx),
		Ledgers:         NewLedgerRepository(tx),
		Reconciliations: NewReconciliationRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
