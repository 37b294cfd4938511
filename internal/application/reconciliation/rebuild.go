// Package reconciliation concilia las ventas POS contra lo declarado por el personal.
package reconciliation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	rules "github.com/jhoicas/shift-ledger/internal/domain/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/pkg/logger"
)

const step = runlog.StepReconciliation

// RebuildUseCase reconstruye los registros de conciliación. Cada día se reemplaza
// (borrar + crear) dentro de una transacción.
type RebuildUseCase struct {
	soldItems    repository.SoldItemRepository
	declarations repository.DeclarationRepository
	records      repository.ReconciliationRepository
	tx           ports.TxRunner
	runs         *runlog.Recorder
	thresholds   rules.Thresholds
	log          zerolog.Logger
}

// NewRebuildUseCase construye el caso de uso. runs puede ser nil.
func NewRebuildUseCase(
	soldItems repository.SoldItemRepository,
	declarations repository.DeclarationRepository,
	records repository.ReconciliationRepository,
	tx ports.TxRunner,
	runs *runlog.Recorder,
	thresholds rules.Thresholds,
	log zerolog.Logger,
) *RebuildUseCase {
	return &RebuildUseCase{
		soldItems:    soldItems,
		declarations: declarations,
		records:      records,
		tx:           tx,
		runs:         runs,
		thresholds:   thresholds,
		log:          log.With().Str("component", "reconciliation").Logger(),
	}
}

// RebuildReconciliation concilia cada día del rango que tiene unidades vendidas. Los días que
// fallan se devuelven en Failures sin detener el resto.
func (uc *RebuildUseCase) RebuildReconciliation(ctx context.Context, start, end shift.Day) (*dto.ReconcileResultDTO, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("rango %s..%s: %w", start, end, domain.ErrInvalidShiftDay)
	}
	days, err := uc.soldItems.ListShiftDays(ctx, start.Key(), end.Key())
	if err != nil {
		return nil, domain.WrapShift(err, start.Key(), step)
	}

	res := &dto.ReconcileResultDTO{}
	for _, key := range days {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, dto.DayFailure{ShiftDay: key, Step: step, ErrorKind: domain.ErrorKind(err), Error: err.Error()})
			break
		}
		day, err := shift.ParseDay(key)
		if err != nil {
			return nil, err
		}
		rec, err := uc.ReconcileDay(ctx, day)
		if err != nil {
			res.Failures = append(res.Failures, dto.DayFailure{ShiftDay: key, Step: step, ErrorKind: domain.ErrorKind(err), Error: err.Error()})
			continue
		}
		res.ShiftsProcessed++
		if rec != nil {
			res.RecordsCreated++
		}
	}
	uc.log.Info().
		Str("from", start.Key()).
		Str("to", end.Key()).
		Int("shifts", res.ShiftsProcessed).
		Int("records", res.RecordsCreated).
		Int("failures", len(res.Failures)).
		Msg("conciliación reconstruida")
	return res, nil
}

// ReconcileDay reemplaza el registro del día. Un día sin unidades vendidas queda sin registro
// y devuelve nil. Un día con ventas y sin declaración siempre queda en FAIL.
func (uc *RebuildUseCase) ReconcileDay(ctx context.Context, day shift.Day) (*entity.ReconciliationRecord, error) {
	rec, err := uc.reconcileDay(ctx, day)
	uc.runs.Record(ctx, day.Key(), step, err)
	return rec, err
}

func (uc *RebuildUseCase) reconcileDay(ctx context.Context, day shift.Day) (*entity.ReconciliationRecord, error) {
	key := day.Key()
	log := logger.ForShift(uc.log, key)

	decl, err := uc.declarations.GetByShiftDay(ctx, key)
	if err != nil {
		err = domain.NewShiftError(domain.ErrExternalSource, key, step, err)
		log.Warn().Err(err).Msg("no se pudo leer la declaración del turno")
		return nil, err
	}

	var out *entity.ReconciliationRecord
	err = uc.tx.RunShift(ctx, step, key, func(repos ports.ShiftRepos) error {
		out = nil
		if err := repos.Reconciliations.DeleteByShiftDay(ctx, key); err != nil {
			return err
		}
		posSales, count, err := repos.SoldItems.SumNetByShiftDay(ctx, key)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		rec := uc.build(key, posSales, count, decl)
		if err := repos.Reconciliations.Create(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		err = domain.WrapShift(err, key, step)
		log.Error().Err(err).Msg("conciliación del día fallida")
		return nil, err
	}
	if out == nil {
		return nil, nil
	}

	ev := log.Info()
	if !out.HasDeclaration {
		ev = log.Warn().Err(domain.ErrMissingDeclaration)
	}
	ev.Str("status", out.Status).
		Str("pos_sales", out.POSSales.String()).
		Str("declared_sales", out.DeclaredSales.String()).
		Msg("día conciliado")
	return out, nil
}

// Get registro de conciliación del día; nil si no existe.
func (uc *RebuildUseCase) Get(ctx context.Context, day shift.Day) (*entity.ReconciliationRecord, error) {
	return uc.records.GetByShiftDay(ctx, day.Key())
}

func (uc *RebuildUseCase) build(key string, posSales decimal.Decimal, count int, decl *entity.DeclaredShift) *entity.ReconciliationRecord {
	rec := &entity.ReconciliationRecord{
		ShiftDay:      key,
		POSSales:      posSales,
		DeclaredSales: decimal.Zero,
		SoldItemCount: count,
	}
	if decl == nil {
		rec.SalesVariance = posSales.Neg()
		rec.Status = entity.ReconciliationFail
		return rec
	}
	rec.HasDeclaration = true
	rec.DeclaredSales = decl.SalesTotal
	rec.DeclaredBuns = decl.RollsEnd
	rec.DeclaredMeat = decl.MeatEndGrams
	rec.SalesVariance = decl.SalesTotal.Sub(posSales)
	rec.Status = uc.thresholds.Classify(rec.SalesVariance)
	return rec
}
