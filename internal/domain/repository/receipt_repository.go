package repository

import (
	"context"
	"time"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// ReceiptRepository puerto de persistencia para hechos POS crudos (normalizados).
// Los recibos son inmutables: Upsert solo inserta los que no existen.
type ReceiptRepository interface {
	UpsertReceipts(ctx context.Context, receipts []*entity.RawReceipt) error
	// ListByWindow devuelve los recibos con CreatedAt en [from, to), con líneas y modificadores.
	ListByWindow(ctx context.Context, from, to time.Time) ([]*entity.RawReceipt, error)
}
