package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.StockSnapshotRepository = (*StockSnapshotRepo)(nil)
var _ repository.ConsumptionEventRepository = (*ConsumptionEventRepo)(nil)

// StockSnapshotRepo stock vivo por ingrediente sobre PostgreSQL.
type StockSnapshotRepo struct {
	q Querier
}

// NewStockSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockSnapshotRepository(q Querier) *StockSnapshotRepo {
	return &StockSnapshotRepo{q: q}
}

// ListByIngredientIDs cantidades registradas; los ingredientes sin fila no aparecen en el mapa.
func (r *StockSnapshotRepo) ListByIngredientIDs(ctx context.Context, ids []string) (map[string]*entity.StockSnapshot, error) {
	out := make(map[string]*entity.StockSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := psql.
		Select("ingredient_id", "name", "quantity", "unit", "updated_at").
		From("ingredient_stock").
		Where(squirrel.Eq{"ingredient_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.StockSnapshot
		if err := rows.Scan(&s.IngredientID, &s.Name, &s.Quantity, &s.Unit, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[s.IngredientID] = &s
	}
	return out, rows.Err()
}

// ConsumptionEventRepo bitácora de deltas de stock sobre PostgreSQL.
type ConsumptionEventRepo struct {
	q Querier
}

// NewConsumptionEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsumptionEventRepository(q Querier) *ConsumptionEventRepo {
	return &ConsumptionEventRepo{q: q}
}

// ListByWindow eventos con occurred_at en [from, to), con el nombre del ingrediente.
func (r *ConsumptionEventRepo) ListByWindow(ctx context.Context, from, to time.Time) ([]*entity.ConsumptionEvent, error) {
	query, args, err := psql.
		Select("e.id", "e.ingredient_id", "COALESCE(s.name, e.ingredient_id)", "e.delta", "e.reason", "e.occurred_at").
		From("stock_consumption_events e").
		LeftJoin("ingredient_stock s ON s.ingredient_id = e.ingredient_id").
		Where(squirrel.GtOrEq{"e.occurred_at": from}).
		Where(squirrel.Lt{"e.occurred_at": to}).
		OrderBy("e.occurred_at", "e.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build consumption query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consumption events: %w", err)
	}
	defer rows.Close()
	var list []*entity.ConsumptionEvent
	for rows.Next() {
		var e entity.ConsumptionEvent
		if err := rows.Scan(&e.ID, &e.IngredientID, &e.Name, &e.Delta, &e.Reason, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan consumption event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
