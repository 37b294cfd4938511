// Package ledger calcula los libros de stock (panes, carne, bebidas) por día de turno.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/inventory"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/pkg/logger"
)

// EngineUseCase motor de libros. Los tres tipos comparten el algoritmo y difieren solo en el
// modelo de consumo y el adaptador de compras.
type EngineUseCase struct {
	soldItems    repository.SoldItemRepository
	recipes      repository.RecipeRepository
	declarations repository.DeclarationRepository
	baselines    repository.BaselineRepository
	purchases    *StockPurchases
	tx           ports.TxRunner
	runs         *runlog.Recorder
	log          zerolog.Logger
	now          func() time.Time
}

// NewEngineUseCase construye el motor. runs puede ser nil.
func NewEngineUseCase(
	soldItems repository.SoldItemRepository,
	recipes repository.RecipeRepository,
	declarations repository.DeclarationRepository,
	baselines repository.BaselineRepository,
	purchases *StockPurchases,
	tx ports.TxRunner,
	runs *runlog.Recorder,
	log zerolog.Logger,
) *EngineUseCase {
	return &EngineUseCase{
		soldItems:    soldItems,
		recipes:      recipes,
		declarations: declarations,
		baselines:    baselines,
		purchases:    purchases,
		tx:           tx,
		runs:         runs,
		log:          log.With().Str("component", "ledger").Logger(),
		now:          time.Now,
	}
}

// ComputeAndUpsertLedger calcula y guarda la fila de (kind, día). Ante cualquier error la
// fila previa queda intacta y el paso queda marcado como fallido en shift_runs.
// Recalcular con las mismas entradas deja la misma fila.
func (uc *EngineUseCase) ComputeAndUpsertLedger(ctx context.Context, kind entity.LedgerKind, day shift.Day) (*entity.LedgerEntry, error) {
	step := runlog.StepLedger(kind)
	model, ok := inventory.Models[kind]
	if !ok {
		return nil, domain.NewShiftError(domain.ErrInvalidInput, day.Key(), step, fmt.Errorf("tipo de libro %q", kind))
	}
	entry, err := uc.computeAndUpsert(ctx, model, day, step)
	uc.runs.Record(ctx, day.Key(), step, err)
	return entry, err
}

func (uc *EngineUseCase) computeAndUpsert(ctx context.Context, model inventory.ConsumptionModel, day shift.Day, step string) (*entity.LedgerEntry, error) {
	kind := model.Kind
	log := logger.ForShift(uc.log, day.Key()).With().Str("kind", string(kind)).Logger()

	entry, err := uc.compute(ctx, model, day)
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo calcular el libro")
		return nil, domain.WrapShift(err, day.Key(), step)
	}

	err = uc.tx.RunShift(ctx, step, day.Key(), func(repos ports.ShiftRepos) error {
		if err := repos.Ledgers.Upsert(ctx, entry); err != nil {
			return err
		}
		n, err := repos.Ledgers.CountByKey(ctx, kind, day.Key())
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%d filas para (%s, %s): %w", n, kind, day.Key(), domain.ErrInvariantViolation)
		}
		return nil
	})
	if err != nil {
		err = domain.WrapShift(err, day.Key(), step)
		if domain.ErrorKind(err) == "InvariantViolation" {
			log.Error().Err(err).Msg("violación de invariante")
		} else {
			log.Warn().Err(err).Msg("no se pudo guardar el libro")
		}
		return nil, err
	}

	ev := log.Info().Str("estimated", entry.Estimated.String()).Str("baseline", entry.BaselineSource)
	if entry.Variance != nil {
		ev = ev.Str("variance", entry.Variance.String())
	}
	ev.Msg("libro actualizado")
	return entry, nil
}

// ComputeAll calcula los tres libros del día; se detiene en el primer error.
func (uc *EngineUseCase) ComputeAll(ctx context.Context, day shift.Day) ([]*entity.LedgerEntry, error) {
	out := make([]*entity.LedgerEntry, 0, len(entity.LedgerKinds))
	for _, kind := range entity.LedgerKinds {
		e, err := uc.ComputeAndUpsertLedger(ctx, kind, day)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (uc *EngineUseCase) compute(ctx context.Context, model inventory.ConsumptionModel, day shift.Day) (*entity.LedgerEntry, error) {
	key := day.Key()

	// 1. Consumo estimado por unidades vendidas y porciones de receta
	items, err := uc.soldItems.ListByShiftDay(ctx, key)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0)
	seen := make(map[string]struct{})
	for _, it := range items {
		if _, ok := seen[it.ProductCode]; !ok {
			seen[it.ProductCode] = struct{}{}
			codes = append(codes, it.ProductCode)
		}
	}
	portions := map[string][]entity.RecipePortion{}
	if len(codes) > 0 {
		if portions, err = uc.recipes.PortionsByProductCodes(ctx, codes); err != nil {
			return nil, fmt.Errorf("porciones: %w", err)
		}
	}
	estimated, missing := model.Estimate(items, portions)
	if len(missing) > 0 {
		uc.log.Warn().
			Err(domain.ErrMissingMapping).
			Str("shift_day", key).
			Str("kind", string(model.Kind)).
			Strs("product_codes", missing).
			Msg("productos sin receta, su consumo cuenta como cero")
	}

	// 2. Reposición del día
	purchased, err := uc.purchases.ForKind(ctx, model.Kind, key)
	if err != nil {
		return nil, fmt.Errorf("compras: %w", err)
	}

	// 3. Conteo final declarado
	decl, err := uc.declarations.GetByShiftDay(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("declaración: %w", err)
	}
	actualEnd := decl.EndCount(model.Kind)

	// 4. Inventario inicial implícito y varianza
	starting, source, err := uc.baseline(ctx, model.Kind, day)
	if err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		Kind:            model.Kind,
		ShiftDay:        key,
		Estimated:       estimated,
		Purchased:       purchased,
		ActualEnd:       actualEnd,
		StartingImplied: starting,
		BaselineSource:  source,
		MissingMappings: missing,
	}
	if actualEnd != nil {
		start := decimal.Zero
		if starting != nil {
			start = *starting
		}
		v := inventory.LedgerVariance(start, purchased, estimated, *actualEnd)
		entry.Variance = &v
	}
	return entry, nil
}

// baseline resuelve el inventario inicial: conteo final declarado el día anterior, o la
// confirmación del operador para el día. Sin ninguno queda desconocido (nil) y la varianza
// se calcula desde cero con BaselineSource = unknown.
func (uc *EngineUseCase) baseline(ctx context.Context, kind entity.LedgerKind, day shift.Day) (*decimal.Decimal, string, error) {
	prev, err := uc.declarations.GetByShiftDay(ctx, day.Prev().Key())
	if err != nil {
		return nil, "", fmt.Errorf("declaración anterior: %w", err)
	}
	if end := prev.EndCount(kind); end != nil {
		v := *end
		return &v, entity.BaselinePreviousDay, nil
	}
	conf, err := uc.baselines.Get(ctx, kind, day.Key())
	if err != nil {
		return nil, "", fmt.Errorf("confirmación de inventario inicial: %w", err)
	}
	if conf != nil {
		v := conf.Quantity
		return &v, entity.BaselineOperatorConfirmed, nil
	}
	return nil, entity.BaselineUnknown, nil
}

// ConfirmBaseline registra el inventario inicial confirmado por un operador y recalcula el libro.
func (uc *EngineUseCase) ConfirmBaseline(ctx context.Context, kind entity.LedgerKind, day shift.Day, qty decimal.Decimal, by string) (*entity.LedgerEntry, error) {
	if !kind.Valid() || by == "" || qty.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	err := uc.baselines.Upsert(ctx, &entity.BaselineConfirmation{
		Kind:        kind,
		ShiftDay:    day.Key(),
		Quantity:    qty,
		ConfirmedBy: by,
		ConfirmedAt: uc.now(),
	})
	if err != nil {
		return nil, domain.WrapShift(err, day.Key(), "baseline")
	}
	uc.log.Info().Str("shift_day", day.Key()).Str("kind", string(kind)).Str("confirmed_by", by).Msg("inventario inicial confirmado")
	return uc.ComputeAndUpsertLedger(ctx, kind, day)
}
