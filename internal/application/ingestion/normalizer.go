package ingestion

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// Alias aceptados por campo canónico, en orden de preferencia. El primero presente gana.
var (
	receiptAliases = map[string][]string{
		"id":             {"id", "receipt_id", "receiptId"},
		"receipt_number": {"receipt_number", "number", "receiptNumber"},
		"created_at":     {"receipt_date", "created_at", "createdAt", "timestamp"},
		"channel":        {"dining_option", "channel", "order_type", "orderType"},
		"total":          {"total_money", "total", "total_amount", "totalAmount"},
		"receipt_type":   {"receipt_type", "type"},
		"cancelled_at":   {"cancelled_at", "cancelledAt"},
		"line_items":     {"line_items", "items", "lineItems"},
	}
	lineAliases = map[string][]string{
		"id":           {"id", "line_id", "lineId"},
		"product_code": {"sku", "product_code", "productCode", "item_id", "itemId"},
		"product_name": {"item_name", "product_name", "productName", "name"},
		"quantity":     {"quantity", "qty"},
		"unit_price":   {"price", "unit_price", "unitPrice"},
		"discount":     {"total_discount", "discount_amount", "discountAmount", "discount"},
		"modifiers":    {"line_modifiers", "modifiers"},
	}
	modifierAliases = map[string][]string{
		"name":        {"name", "option", "modifier_name", "modifierName"},
		"price_delta": {"money_amount", "price_delta", "priceDelta", "price", "amount"},
	}
)

type receiptPayload struct {
	ID            string          `mapstructure:"id"`
	ReceiptNumber string          `mapstructure:"receipt_number"`
	CreatedAt     time.Time       `mapstructure:"created_at"`
	Channel       string          `mapstructure:"channel"`
	Total         decimal.Decimal `mapstructure:"total"`
	ReceiptType   string          `mapstructure:"receipt_type"`
	CancelledAt   string          `mapstructure:"cancelled_at"`
}

type linePayload struct {
	ID          string          `mapstructure:"id"`
	ProductCode string          `mapstructure:"product_code"`
	ProductName string          `mapstructure:"product_name"`
	Quantity    int             `mapstructure:"quantity"`
	UnitPrice   decimal.Decimal `mapstructure:"unit_price"`
	Discount    decimal.Decimal `mapstructure:"discount"`
}

type modifierPayload struct {
	Name       string          `mapstructure:"name"`
	PriceDelta decimal.Decimal `mapstructure:"price_delta"`
}

// NormalizeStats conteos de una normalización.
type NormalizeStats struct {
	Receipts  int
	LineItems int
	Modifiers int
	Skipped   int // reembolsos y recibos anulados
}

// Normalizer convierte payloads heterogéneos del POS al esquema interno. Es el único
// punto que conoce los nombres de campo externos.
type Normalizer struct {
	source string
}

// NewNormalizer construye el normalizador para una fuente (ej. "loyverse").
func NewNormalizer(source string) *Normalizer {
	return &Normalizer{source: source}
}

// Normalize convierte todos los payloads. Un payload inválido invalida el lote completo:
// ingerir un día a medias produciría conciliaciones incorrectas.
func (n *Normalizer) Normalize(payloads []map[string]any) ([]*entity.RawReceipt, NormalizeStats, error) {
	var stats NormalizeStats
	out := make([]*entity.RawReceipt, 0, len(payloads))
	for i, p := range payloads {
		rc, skip, err := n.normalizeReceipt(p)
		if err != nil {
			return nil, stats, fmt.Errorf("recibo #%d: %w: %w", i, domain.ErrExternalSource, err)
		}
		if skip {
			stats.Skipped++
			continue
		}
		stats.Receipts++
		stats.LineItems += len(rc.LineItems)
		stats.Modifiers += rc.ModifierCount()
		out = append(out, rc)
	}
	return out, stats, nil
}

func (n *Normalizer) normalizeReceipt(raw map[string]any) (*entity.RawReceipt, bool, error) {
	fields := canonical(raw, receiptAliases)
	var p receiptPayload
	if err := decode(fields, &p); err != nil {
		return nil, false, err
	}
	if p.CancelledAt != "" || strings.EqualFold(p.ReceiptType, "refund") {
		return nil, true, nil
	}
	if p.CreatedAt.IsZero() {
		return nil, false, fmt.Errorf("sin fecha de creación")
	}
	id := p.ID
	if id == "" {
		if p.ReceiptNumber == "" {
			return nil, false, fmt.Errorf("sin id ni número de recibo")
		}
		id = n.source + ":" + p.ReceiptNumber
	}

	rc := &entity.RawReceipt{
		ID:            id,
		ReceiptNumber: p.ReceiptNumber,
		Source:        n.source,
		Channel:       strings.ToLower(strings.TrimSpace(p.Channel)),
		CreatedAt:     p.CreatedAt.UTC(),
		TotalAmount:   p.Total,
	}

	lines, err := asMaps(fields["line_items"])
	if err != nil {
		return nil, false, fmt.Errorf("líneas: %w", err)
	}
	for idx, rawLine := range lines {
		li, err := normalizeLine(id, idx, rawLine)
		if err != nil {
			return nil, false, fmt.Errorf("línea %d: %w", idx, err)
		}
		rc.LineItems = append(rc.LineItems, li)
	}
	return rc, false, nil
}

func normalizeLine(receiptID string, idx int, raw map[string]any) (entity.RawLineItem, error) {
	fields := canonical(raw, lineAliases)
	var p linePayload
	if err := decode(fields, &p); err != nil {
		return entity.RawLineItem{}, err
	}
	if p.Quantity < 0 {
		return entity.RawLineItem{}, fmt.Errorf("cantidad negativa %d", p.Quantity)
	}
	if p.Quantity > entity.MaxLineQuantity {
		return entity.RawLineItem{}, fmt.Errorf("cantidad %d supera el máximo de %d", p.Quantity, entity.MaxLineQuantity)
	}
	id := p.ID
	if id == "" {
		id = receiptID + ":" + strconv.Itoa(idx)
	}
	code := strings.TrimSpace(p.ProductCode)
	if code == "" {
		code = strings.TrimSpace(p.ProductName)
	}
	li := entity.RawLineItem{
		ID:             id,
		ReceiptID:      receiptID,
		ProductCode:    code,
		ProductName:    p.ProductName,
		Quantity:       p.Quantity,
		UnitPrice:      p.UnitPrice,
		DiscountAmount: p.Discount,
	}

	mods, err := asMaps(fields["modifiers"])
	if err != nil {
		return entity.RawLineItem{}, fmt.Errorf("modificadores: %w", err)
	}
	for _, rawMod := range mods {
		var m modifierPayload
		if err := decode(canonical(rawMod, modifierAliases), &m); err != nil {
			return entity.RawLineItem{}, fmt.Errorf("modificador: %w", err)
		}
		li.Modifiers = append(li.Modifiers, entity.RawModifier{Name: m.Name, PriceDelta: m.PriceDelta})
	}
	return li, nil
}

// canonical resuelve los alias a nombres canónicos; ignora valores nil.
func canonical(raw map[string]any, aliases map[string][]string) map[string]any {
	out := make(map[string]any, len(aliases))
	for key, names := range aliases {
		for _, name := range names {
			if v, ok := raw[name]; ok && v != nil {
				out[key] = v
				break
			}
		}
	}
	return out
}

func asMaps(v any) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []map[string]any:
		return list, nil
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("elemento de tipo %T", item)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("se esperaba lista, llegó %T", v)
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			timeHook,
			intHook,
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func decimalHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return data, nil
}

// timeHook acepta RFC3339 o epoch (segundos o milisegundos).
func timeHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != timeType {
		return data, nil
	}
	var epoch int64
	switch v := data.(type) {
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fecha inválida %q", v)
		}
		epoch = n
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("fecha inválida %q", v.String())
		}
		epoch = n
	case float64:
		epoch = int64(v)
	case int64:
		epoch = v
	default:
		return data, nil
	}
	if epoch > 1e12 {
		return time.UnixMilli(epoch).UTC(), nil
	}
	return time.Unix(epoch, 0).UTC(), nil
}

// intHook acepta cantidades como "2", 2.0 o json.Number("2.000"), pero no fracciones.
func intHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t.Kind() != reflect.Int {
		return data, nil
	}
	var d decimal.Decimal
	switch v := data.(type) {
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, err
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cantidad inválida %q", v)
		}
		d = parsed
	default:
		return data, nil
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("cantidad fraccionaria %s", d)
	}
	return int(d.IntPart()), nil
}
