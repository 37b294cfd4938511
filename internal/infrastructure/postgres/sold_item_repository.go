package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SoldItemRepository = (*SoldItemRepo)(nil)

// SoldItemRepo unidades vendidas sobre PostgreSQL (usable con pool o tx).
type SoldItemRepo struct {
	q Querier
}

// NewSoldItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSoldItemRepository(q Querier) *SoldItemRepo {
	return &SoldItemRepo{q: q}
}

const shiftDayText = "to_char(shift_day, 'YYYY-MM-DD')"

// ReplaceShiftDay borra las unidades del día (los modificadores caen en cascada) e inserta items.
// Atómico solo si q es una tx; TxRunner.RunShift lo garantiza.
func (r *SoldItemRepo) ReplaceShiftDay(ctx context.Context, shiftDay string, items []*entity.SoldItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sold_items WHERE shift_day = $1`, shiftDay); err != nil {
		return fmt.Errorf("delete sold items %s: %w", shiftDay, err)
	}
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		if it.ShiftDay != shiftDay {
			return fmt.Errorf("sold item %s pertenece a %s, no a %s", it.ID, it.ShiftDay, shiftDay)
		}
		batch.Queue(`
			INSERT INTO sold_items (id, receipt_id, line_item_id, unit_index, sold_at, shift_day, channel,
				product_code, product_name, recipe_id, gross_amount, net_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			it.ID, it.ReceiptID, it.LineItemID, it.UnitIndex, it.SoldAt, it.ShiftDay, it.Channel,
			it.ProductCode, it.ProductName, it.RecipeID, it.GrossAmount, it.NetAmount)
		for _, m := range it.Modifiers {
			batch.Queue(`
				INSERT INTO sold_item_modifiers (id, sold_item_id, name, price_delta)
				VALUES ($1, $2, $3, $4)`,
				m.ID, it.ID, m.Name, m.PriceDelta)
		}
	}
	br := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert sold items %s: %w", shiftDay, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert sold items %s: %w", shiftDay, err)
	}
	return nil
}

// ListByShiftDay unidades del día con sus modificadores, en orden estable.
func (r *SoldItemRepo) ListByShiftDay(ctx context.Context, shiftDay string) ([]*entity.SoldItem, error) {
	query := `
		SELECT id, receipt_id, line_item_id, unit_index, sold_at, ` + shiftDayText + `, channel,
			product_code, product_name, recipe_id, gross_amount, net_amount
		FROM sold_items WHERE shift_day = $1
		ORDER BY sold_at, line_item_id, unit_index`
	rows, err := r.q.Query(ctx, query, shiftDay)
	if err != nil {
		return nil, fmt.Errorf("list sold items: %w", err)
	}
	var list []*entity.SoldItem
	byID := make(map[string]*entity.SoldItem)
	for rows.Next() {
		var s entity.SoldItem
		if err := rows.Scan(&s.ID, &s.ReceiptID, &s.LineItemID, &s.UnitIndex, &s.SoldAt, &s.ShiftDay, &s.Channel,
			&s.ProductCode, &s.ProductName, &s.RecipeID, &s.GrossAmount, &s.NetAmount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sold item: %w", err)
		}
		list = append(list, &s)
		byID[s.ID] = &s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sold items: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}

	mrows, err := r.q.Query(ctx, `
		SELECT m.id, m.sold_item_id, m.name, m.price_delta
		FROM sold_item_modifiers m
		JOIN sold_items s ON s.id = m.sold_item_id
		WHERE s.shift_day = $1
		ORDER BY m.sold_item_id, m.id`, shiftDay)
	if err != nil {
		return nil, fmt.Errorf("list sold item modifiers: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var m entity.SoldItemModifier
		if err := mrows.Scan(&m.ID, &m.SoldItemID, &m.Name, &m.PriceDelta); err != nil {
			return nil, fmt.Errorf("scan sold item modifier: %w", err)
		}
		if s, ok := byID[m.SoldItemID]; ok {
			s.Modifiers = append(s.Modifiers, m)
		}
	}
	return list, mrows.Err()
}

// CountByShiftDay cantidad de unidades del día.
func (r *SoldItemRepo) CountByShiftDay(ctx context.Context, shiftDay string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM sold_items WHERE shift_day = $1`, shiftDay).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sold items: %w", err)
	}
	return n, nil
}

// SumNetByShiftDay suma de net_amount y cantidad de unidades del día.
func (r *SoldItemRepo) SumNetByShiftDay(ctx context.Context, shiftDay string) (decimal.Decimal, int, error) {
	var total decimal.Decimal
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(net_amount), 0), count(*)
		FROM sold_items WHERE shift_day = $1`, shiftDay).Scan(&total, &n)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum sold items: %w", err)
	}
	return total, n, nil
}

// ListShiftDays días distintos con unidades vendidas entre fromDay y toDay inclusive.
func (r *SoldItemRepo) ListShiftDays(ctx context.Context, fromDay, toDay string) ([]string, error) {
	query, args, err := psql.
		Select(shiftDayText).
		From("sold_items").
		Where(squirrel.Expr("shift_day >= ?::date", fromDay)).
		Where(squirrel.Expr("shift_day <= ?::date", toDay)).
		GroupBy("shift_day").
		OrderBy("shift_day").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build shift days query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shift days: %w", err)
	}
	defer rows.Close()
	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan shift day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
