package entity

import "github.com/shopspring/decimal"

// Categorías de ingrediente que alimentan los libros de stock.
const (
	IngredientRoll  = "roll"
	IngredientMeat  = "meat"
	IngredientDrink = "drink"
)

// RecipePortion cantidad de un ingrediente consumida por unidad vendida de un producto.
type RecipePortion struct {
	ProductCode     string
	RecipeID        string
	IngredientID    string
	Category        string // roll, meat, drink u otra (no concilia)
	QuantityPerUnit decimal.Decimal
}
