package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo mapeo producto → porciones (solo lectura).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// PortionsByProductCodes porciones agrupadas por código de producto.
func (r *RecipeRepo) PortionsByProductCodes(ctx context.Context, codes []string) (map[string][]entity.RecipePortion, error) {
	out := make(map[string][]entity.RecipePortion)
	if len(codes) == 0 {
		return out, nil
	}
	query, args, err := psql.
		Select("product_code", "recipe_id", "ingredient_id", "category", "quantity_per_unit").
		From("recipe_portions").
		Where(squirrel.Eq{"product_code": codes}).
		OrderBy("product_code", "ingredient_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build portions query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list portions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.RecipePortion
		if err := rows.Scan(&p.ProductCode, &p.RecipeID, &p.IngredientID, &p.Category, &p.QuantityPerUnit); err != nil {
			return nil, fmt.Errorf("scan portion: %w", err)
		}
		out[p.ProductCode] = append(out[p.ProductCode], p)
	}
	return out, rows.Err()
}
