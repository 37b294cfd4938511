package solditems

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/domain"
)

// DiscountPolicy define cómo se reparte el descuento de una línea entre sus unidades.
type DiscountPolicy string

const (
	// DiscountNone ignora el descuento: neto = bruto en todas las unidades.
	DiscountNone DiscountPolicy = "none"
	// DiscountProrate reparte el descuento en partes iguales; el residuo de redondeo va a la última unidad.
	DiscountProrate DiscountPolicy = "prorate"
	// DiscountFirstUnit aplica todo el descuento a la primera unidad.
	DiscountFirstUnit DiscountPolicy = "first_unit"
)

// ParseDiscountPolicy valida el nombre de la política. Vacío equivale a DiscountNone.
func ParseDiscountPolicy(s string) (DiscountPolicy, error) {
	switch p := DiscountPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DiscountNone, nil
	case DiscountNone, DiscountProrate, DiscountFirstUnit:
		return p, nil
	default:
		return "", fmt.Errorf("política de descuento %q: %w", s, domain.ErrInvalidInput)
	}
}

// netAmounts devuelve el neto de cada una de las qty unidades de una línea.
// La suma de los netos es exactamente qty*unitPrice - discount salvo con DiscountNone.
func (p DiscountPolicy) netAmounts(unitPrice, discount decimal.Decimal, qty int) []decimal.Decimal {
	nets := make([]decimal.Decimal, qty)
	for i := range nets {
		nets[i] = unitPrice
	}
	if qty == 0 || discount.IsZero() {
		return nets
	}
	switch p {
	case DiscountProrate:
		share := discount.Div(decimal.NewFromInt(int64(qty))).RoundDown(2)
		for i := range nets {
			nets[i] = unitPrice.Sub(share)
		}
		rest := discount.Sub(share.Mul(decimal.NewFromInt(int64(qty))))
		nets[qty-1] = nets[qty-1].Sub(rest)
	case DiscountFirstUnit:
		nets[0] = unitPrice.Sub(discount)
	}
	return nets
}
