package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// ConsumptionModel modelo de consumo de un libro: qué categoría de ingrediente
// descuenta cada unidad vendida según su receta.
type ConsumptionModel struct {
	Kind     entity.LedgerKind
	Category string
}

// Models modelos por tipo de libro. Los tres son estructuralmente idénticos;
// solo cambia la categoría (pan = 1 por hamburguesa, carne = gramos por porción, bebida = unidades).
var Models = map[entity.LedgerKind]ConsumptionModel{
	entity.LedgerRolls:  {Kind: entity.LedgerRolls, Category: entity.IngredientRoll},
	entity.LedgerMeat:   {Kind: entity.LedgerMeat, Category: entity.IngredientMeat},
	entity.LedgerDrinks: {Kind: entity.LedgerDrinks, Category: entity.IngredientDrink},
}

// Estimate suma el consumo atribuible a items. portions viene indexado por código de producto.
// Los productos sin ninguna porción registrada se devuelven en missing (ordenados, sin repetir)
// y cuentan como cero: no es fatal para el día.
func (m ConsumptionModel) Estimate(items []*entity.SoldItem, portions map[string][]entity.RecipePortion) (estimated decimal.Decimal, missing []string) {
	estimated = decimal.Zero
	seen := make(map[string]struct{})
	for _, it := range items {
		ps, ok := portions[it.ProductCode]
		if !ok || len(ps) == 0 {
			if _, dup := seen[it.ProductCode]; !dup {
				seen[it.ProductCode] = struct{}{}
				missing = append(missing, it.ProductCode)
			}
			continue
		}
		for _, p := range ps {
			if p.Category == m.Category {
				estimated = estimated.Add(p.QuantityPerUnit)
			}
		}
	}
	sort.Strings(missing)
	return estimated, missing
}
