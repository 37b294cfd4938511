package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo hechos POS normalizados sobre PostgreSQL (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// UpsertReceipts inserta recibos, líneas y modificadores que aún no existen.
// Un recibo ya registrado no se modifica: los hechos POS son inmutables.
func (r *ReceiptRepo) UpsertReceipts(ctx context.Context, receipts []*entity.RawReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rc := range receipts {
		batch.Queue(`
			INSERT INTO pos_receipts (id, receipt_number, source, channel, created_at, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			rc.ID, rc.ReceiptNumber, rc.Source, rc.Channel, rc.CreatedAt, rc.TotalAmount)
		for pos, li := range rc.LineItems {
			batch.Queue(`
				INSERT INTO pos_line_items (id, receipt_id, position, product_code, product_name, quantity, unit_price, discount_amount)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO NOTHING`,
				li.ID, rc.ID, pos, li.ProductCode, li.ProductName, li.Quantity, li.UnitPrice, li.DiscountAmount)
			for mpos, m := range li.Modifiers {
				batch.Queue(`
					INSERT INTO pos_line_item_modifiers (line_item_id, position, name, price_delta)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (line_item_id, position) DO NOTHING`,
					li.ID, mpos, m.Name, m.PriceDelta)
			}
		}
	}
	br := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert receipts: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("upsert receipts: %w", err)
	}
	return nil
}

// ListByWindow recibos con created_at en [from, to), ordenados por fecha, con líneas y modificadores.
func (r *ReceiptRepo) ListByWindow(ctx context.Context, from, to time.Time) ([]*entity.RawReceipt, error) {
	query, args, err := psql.
		Select("id", "receipt_number", "source", "channel", "created_at", "total_amount").
		From("pos_receipts").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build receipts query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	var list []*entity.RawReceipt
	byID := make(map[string]*entity.RawReceipt)
	for rows.Next() {
		var rc entity.RawReceipt
		if err := rows.Scan(&rc.ID, &rc.ReceiptNumber, &rc.Source, &rc.Channel, &rc.CreatedAt, &rc.TotalAmount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, &rc)
		byID[rc.ID] = &rc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(list))
	for _, rc := range list {
		ids = append(ids, rc.ID)
	}
	if err := r.loadLineItems(ctx, ids, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ReceiptRepo) loadLineItems(ctx context.Context, receiptIDs []string, byID map[string]*entity.RawReceipt) error {
	query, args, err := psql.
		Select("li.id", "li.receipt_id", "li.product_code", "li.product_name", "li.quantity", "li.unit_price", "li.discount_amount",
			"COALESCE(m.name, '')", "COALESCE(m.price_delta, 0)", "m.position IS NOT NULL").
		From("pos_line_items li").
		LeftJoin("pos_line_item_modifiers m ON m.line_item_id = li.id").
		Where(squirrel.Eq{"li.receipt_id": receiptIDs}).
		OrderBy("li.receipt_id", "li.position", "m.position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build line items query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	// Las filas llegan agrupadas por línea; una línea con N modificadores repite N veces.
	var cur *entity.RawLineItem
	var curReceipt *entity.RawReceipt
	for rows.Next() {
		var li entity.RawLineItem
		var mod entity.RawModifier
		var hasMod bool
		if err := rows.Scan(&li.ID, &li.ReceiptID, &li.ProductCode, &li.ProductName, &li.Quantity,
			&li.UnitPrice, &li.DiscountAmount, &mod.Name, &mod.PriceDelta, &hasMod); err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		if cur == nil || cur.ID != li.ID {
			if cur != nil {
				curReceipt.LineItems = append(curReceipt.LineItems, *cur)
			}
			curReceipt = byID[li.ReceiptID]
			cur = &li
		}
		if hasMod {
			cur.Modifiers = append(cur.Modifiers, mod)
		}
	}
	if cur != nil {
		curReceipt.LineItems = append(curReceipt.LineItems, *cur)
	}
	return rows.Err()
}
