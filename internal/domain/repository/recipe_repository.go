package repository

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// RecipeRepository mapeo producto → porciones de ingredientes.
type RecipeRepository interface {
	// PortionsByProductCodes devuelve las porciones por código; los códigos sin receta no aparecen.
	PortionsByProductCodes(ctx context.Context, codes []string) (map[string][]entity.RecipePortion, error)
}
