package ingestion_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/application/ingestion"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

func TestNormalize_FormatoV2(t *testing.T) {
	payload := map[string]any{
		"receipt_number": "1-1001",
		"receipt_date":   "2025-10-18T19:45:00.000Z",
		"dining_option":  "Dine in",
		"total_money":    json.Number("370.00"),
		"line_items": []any{
			map[string]any{
				"id":             "li-1",
				"sku":            "BURGER-CLASSIC",
				"item_name":      "Classic Burger",
				"quantity":       json.Number("2.000"),
				"price":          json.Number("150"),
				"total_discount": json.Number("0"),
				"line_modifiers": []any{
					map[string]any{"name": "Extra cheese", "money_amount": json.Number("20")},
				},
			},
			map[string]any{
				"sku":       "COKE",
				"item_name": "Coke",
				"quantity":  json.Number("1"),
				"price":     json.Number("50"),
			},
		},
	}

	n := ingestion.NewNormalizer("loyverse")
	got, stats, err := n.Normalize([]map[string]any{payload})
	require.NoError(t, err)
	require.Len(t, got, 1)

	rc := got[0]
	assert.Equal(t, "loyverse:1-1001", rc.ID)
	assert.Equal(t, "dine in", rc.Channel)
	assert.True(t, rc.CreatedAt.Equal(time.Date(2025, 10, 18, 19, 45, 0, 0, time.UTC)))
	assert.Equal(t, "370", rc.TotalAmount.String())

	require.Len(t, rc.LineItems, 2)
	assert.Equal(t, "li-1", rc.LineItems[0].ID)
	assert.Equal(t, 2, rc.LineItems[0].Quantity)
	assert.Equal(t, "150", rc.LineItems[0].UnitPrice.String())
	require.Len(t, rc.LineItems[0].Modifiers, 1)
	assert.Equal(t, "Extra cheese", rc.LineItems[0].Modifiers[0].Name)
	assert.Equal(t, "20", rc.LineItems[0].Modifiers[0].PriceDelta.String())
	assert.Equal(t, "loyverse:1-1001:1", rc.LineItems[1].ID, "línea sin id usa recibo + posición")

	assert.Equal(t, ingestion.NormalizeStats{Receipts: 1, LineItems: 2, Modifiers: 1}, stats)
}

func TestNormalize_FormatoLegacy(t *testing.T) {
	payload := map[string]any{
		"id":        "R-77",
		"number":    "77",
		"createdAt": json.Number("1760816700000"),
		"channel":   "grab",
		"total":     "99.5",
		"items": []any{
			map[string]any{
				"lineId":      "L1",
				"productCode": "FRIES",
				"name":        "Fries",
				"qty":         "1",
				"unitPrice":   "99.5",
				"modifiers":   []any{map[string]any{"option": "Large", "priceDelta": "0"}},
			},
		},
	}

	got, _, err := ingestion.NewNormalizer("legacy").Normalize([]map[string]any{payload})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "R-77", got[0].ID)
	assert.True(t, got[0].CreatedAt.Equal(time.UnixMilli(1760816700000)))
	require.Len(t, got[0].LineItems, 1)
	assert.Equal(t, "FRIES", got[0].LineItems[0].ProductCode)
	assert.Equal(t, "Large", got[0].LineItems[0].Modifiers[0].Name)
}

func TestNormalize_OmiteReembolsosYAnulados(t *testing.T) {
	payloads := []map[string]any{
		{"receipt_number": "1", "receipt_date": "2025-10-18T10:00:00Z", "receipt_type": "REFUND"},
		{"receipt_number": "2", "receipt_date": "2025-10-18T10:00:00Z", "cancelled_at": "2025-10-18T10:05:00Z"},
		{"receipt_number": "3", "receipt_date": "2025-10-18T10:00:00Z", "receipt_type": "SALE"},
	}
	got, stats, err := ingestion.NewNormalizer("loyverse").Normalize(payloads)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, stats.Skipped)
}

func TestNormalize_PayloadInvalidoFallaElLote(t *testing.T) {
	payloads := []map[string]any{
		{"receipt_number": "1", "receipt_date": "2025-10-18T10:00:00Z"},
		{"receipt_number": "2", "receipt_date": "2025-10-18T10:00:00Z",
			"line_items": []any{map[string]any{"sku": "X", "quantity": json.Number("1.5")}}},
	}
	_, _, err := ingestion.NewNormalizer("loyverse").Normalize(payloads)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalSource)
}

func TestNormalize_SinFechaEsError(t *testing.T) {
	_, _, err := ingestion.NewNormalizer("loyverse").Normalize([]map[string]any{{"receipt_number": "1"}})
	assert.Error(t, err)
}

func TestNormalize_CantidadDesmedidaFallaElLote(t *testing.T) {
	line := func(qty string) []map[string]any {
		return []map[string]any{{"receipt_number": "1", "receipt_date": "2025-10-18T10:00:00Z",
			"line_items": []any{map[string]any{"sku": "BURGER", "quantity": json.Number(qty), "price": json.Number("100")}}}}
	}

	got, _, err := ingestion.NewNormalizer("loyverse").Normalize(line("1000"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.MaxLineQuantity, got[0].LineItems[0].Quantity)

	_, _, err = ingestion.NewNormalizer("loyverse").Normalize(line("1000000000"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalSource)
}
