// Package solditems expande los recibos POS en unidades vendidas por día de turno.
package solditems

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

const step = runlog.StepSoldItems

// idNamespace raíz de los ids deterministas de unidades y modificadores.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("shift-ledger/sold-items"))

// DeriveUseCase deriva las unidades vendidas. Cada día se reemplaza completo dentro de una
// transacción: nunca queda mezclado entre la versión anterior y la nueva.
type DeriveUseCase struct {
	receipts repository.ReceiptRepository
	recipes  repository.RecipeRepository
	tx       ports.TxRunner
	runs     *runlog.Recorder
	resolver *shift.Resolver
	policy   DiscountPolicy
	log      zerolog.Logger
}

// NewDeriveUseCase construye el caso de uso. runs puede ser nil.
func NewDeriveUseCase(
	receipts repository.ReceiptRepository,
	recipes repository.RecipeRepository,
	tx ports.TxRunner,
	runs *runlog.Recorder,
	resolver *shift.Resolver,
	policy DiscountPolicy,
	log zerolog.Logger,
) *DeriveUseCase {
	if policy == "" {
		policy = DiscountNone
	}
	return &DeriveUseCase{
		receipts: receipts,
		recipes:  recipes,
		tx:       tx,
		runs:     runs,
		resolver: resolver,
		policy:   policy,
		log:      log.With().Str("component", "sold_items").Logger(),
	}
}

// DeriveSoldItems recalcula los días del rango [start, end] que tienen recibos.
// Se detiene en el primer día que falla; los días anteriores quedan completos y el fallido
// conserva su versión previa. El fallo se reporta en Failures.
func (uc *DeriveUseCase) DeriveSoldItems(ctx context.Context, start, end shift.Day) (*dto.DeriveResultDTO, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("rango %s..%s: %w", start, end, domain.ErrInvalidShiftDay)
	}
	from, to := uc.resolver.RangeWindow(start, end)
	receipts, err := uc.receipts.ListByWindow(ctx, from, to)
	if err != nil {
		return nil, domain.NewShiftError(domain.ErrExternalSource, start.Key(), step, err)
	}

	byDay := make(map[string][]*entity.RawReceipt)
	for _, rc := range receipts {
		key := uc.resolver.ToDateKey(rc.CreatedAt)
		byDay[key] = append(byDay[key], rc)
	}
	days := make([]string, 0, len(byDay))
	for k := range byDay {
		days = append(days, k)
	}
	sort.Strings(days)

	res := &dto.DeriveResultDTO{}
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, failure(day, err))
			break
		}
		n, err := uc.replaceDay(ctx, day, byDay[day])
		if err != nil {
			uc.log.Error().Err(err).Str("shift_day", day).Msg("derivación de unidades fallida, se detiene el rango")
			res.Failures = append(res.Failures, failure(day, err))
			break
		}
		res.ShiftsProcessed++
		res.ItemsCreated += n
	}
	uc.log.Info().
		Str("from", start.Key()).
		Str("to", end.Key()).
		Int("shifts", res.ShiftsProcessed).
		Int("items", res.ItemsCreated).
		Int("failures", len(res.Failures)).
		Msg("unidades vendidas derivadas")
	return res, nil
}

// DeriveDay recalcula un solo día; si no hay recibos deja el día vacío.
func (uc *DeriveUseCase) DeriveDay(ctx context.Context, day shift.Day) (int, error) {
	from, to := uc.resolver.Window(day)
	receipts, err := uc.receipts.ListByWindow(ctx, from, to)
	if err != nil {
		err = domain.NewShiftError(domain.ErrExternalSource, day.Key(), step, err)
		uc.runs.Record(ctx, day.Key(), step, err)
		return 0, err
	}
	return uc.replaceDay(ctx, day.Key(), receipts)
}

// replaceDay reemplaza las unidades del día y deja el resultado en shift_runs.
func (uc *DeriveUseCase) replaceDay(ctx context.Context, day string, receipts []*entity.RawReceipt) (int, error) {
	n, err := uc.writeDay(ctx, day, receipts)
	uc.runs.Record(ctx, day, step, err)
	return n, err
}

func (uc *DeriveUseCase) writeDay(ctx context.Context, day string, receipts []*entity.RawReceipt) (int, error) {
	items, err := uc.explode(ctx, day, receipts)
	if err != nil {
		return 0, err
	}
	err = uc.tx.RunShift(ctx, step, day, func(repos ports.ShiftRepos) error {
		return repos.SoldItems.ReplaceShiftDay(ctx, day, items)
	})
	if err != nil {
		return 0, domain.WrapShift(err, day, step)
	}
	uc.log.Debug().Str("shift_day", day).Int("items", len(items)).Msg("día de unidades reemplazado")
	return len(items), nil
}

// explode genera una unidad por cada cantidad de cada línea, en orden de recibo y línea.
func (uc *DeriveUseCase) explode(ctx context.Context, day string, receipts []*entity.RawReceipt) ([]*entity.SoldItem, error) {
	sort.Slice(receipts, func(i, j int) bool {
		if !receipts[i].CreatedAt.Equal(receipts[j].CreatedAt) {
			return receipts[i].CreatedAt.Before(receipts[j].CreatedAt)
		}
		return receipts[i].ID < receipts[j].ID
	})

	codes := make([]string, 0)
	seen := make(map[string]struct{})
	for _, rc := range receipts {
		for _, li := range rc.LineItems {
			if _, ok := seen[li.ProductCode]; !ok {
				seen[li.ProductCode] = struct{}{}
				codes = append(codes, li.ProductCode)
			}
		}
	}
	recipeOf := make(map[string]string)
	if len(codes) > 0 {
		portions, err := uc.recipes.PortionsByProductCodes(ctx, codes)
		if err != nil {
			return nil, domain.NewShiftError(domain.ErrExternalSource, day, step, err)
		}
		for code, ps := range portions {
			for _, p := range ps {
				if p.RecipeID != "" {
					recipeOf[code] = p.RecipeID
					break
				}
			}
		}
	}

	var items []*entity.SoldItem
	for _, rc := range receipts {
		for _, li := range rc.LineItems {
			if li.Quantity <= 0 {
				continue
			}
			if li.Quantity > entity.MaxLineQuantity {
				return nil, domain.NewShiftError(domain.ErrExternalSource, day, step,
					fmt.Errorf("línea %s con cantidad %d", li.ID, li.Quantity))
			}
			var recipeID *string
			if id, ok := recipeOf[li.ProductCode]; ok {
				recipeID = &id
			}
			nets := uc.policy.netAmounts(li.UnitPrice, li.DiscountAmount, li.Quantity)
			for unit := 0; unit < li.Quantity; unit++ {
				itemID := uuid.NewSHA1(idNamespace, []byte(li.ID+"#"+strconv.Itoa(unit))).String()
				it := &entity.SoldItem{
					ID:          itemID,
					ReceiptID:   rc.ID,
					LineItemID:  li.ID,
					UnitIndex:   unit,
					SoldAt:      rc.CreatedAt,
					ShiftDay:    day,
					Channel:     rc.Channel,
					ProductCode: li.ProductCode,
					ProductName: li.ProductName,
					RecipeID:    recipeID,
					GrossAmount: li.UnitPrice,
					NetAmount:   nets[unit],
				}
				for pos, m := range li.Modifiers {
					it.Modifiers = append(it.Modifiers, entity.SoldItemModifier{
						ID:         uuid.NewSHA1(idNamespace, []byte(itemID+"#m"+strconv.Itoa(pos))).String(),
						SoldItemID: itemID,
						Name:       m.Name,
						PriceDelta: m.PriceDelta,
					})
				}
				items = append(items, it)
			}
		}
	}
	return items, nil
}

func failure(day string, err error) dto.DayFailure {
	return dto.DayFailure{ShiftDay: day, Step: step, ErrorKind: domain.ErrorKind(err), Error: err.Error()}
}
