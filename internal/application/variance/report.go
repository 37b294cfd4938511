// Package variance arma el reporte de varianza por ingrediente de un día de turno,
// a partir de la bitácora de consumo y el stock vivo.
package variance

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	rules "github.com/jhoicas/shift-ledger/internal/domain/variance"
)

// ReportUseCase reporte de solo lectura; no persiste nada.
type ReportUseCase struct {
	events     repository.ConsumptionEventRepository
	stock      repository.StockSnapshotRepository
	resolver   *shift.Resolver
	thresholds rules.Thresholds
	log        zerolog.Logger
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	events repository.ConsumptionEventRepository,
	stock repository.StockSnapshotRepository,
	resolver *shift.Resolver,
	thresholds rules.Thresholds,
	log zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		events:     events,
		stock:      stock,
		resolver:   resolver,
		thresholds: thresholds,
		log:        log.With().Str("component", "variance").Logger(),
	}
}

// ComputeShiftVariance una fila por ingrediente con eventos en la ventana del día.
// used = suma de |deltas negativos|, expected = cantidad del stock vivo, variance = used - expected.
// Ordena por |variance| descendente para mostrar primero los peores desvíos.
func (uc *ReportUseCase) ComputeShiftVariance(ctx context.Context, day shift.Day) ([]dto.VarianceRowDTO, error) {
	from, to := uc.resolver.Window(day)
	events, err := uc.events.ListByWindow(ctx, from, to)
	if err != nil {
		return nil, domain.NewShiftError(domain.ErrExternalSource, day.Key(), "variance", err)
	}
	if len(events) == 0 {
		return []dto.VarianceRowDTO{}, nil
	}

	used := make(map[string]decimal.Decimal)
	names := make(map[string]string)
	ids := make([]string, 0)
	for _, e := range events {
		if _, ok := used[e.IngredientID]; !ok {
			used[e.IngredientID] = decimal.Zero
			ids = append(ids, e.IngredientID)
		}
		if names[e.IngredientID] == "" {
			names[e.IngredientID] = e.Name
		}
		if e.Delta.IsNegative() {
			used[e.IngredientID] = used[e.IngredientID].Add(e.Delta.Abs())
		}
	}

	snaps, err := uc.stock.ListByIngredientIDs(ctx, ids)
	if err != nil {
		return nil, domain.NewShiftError(domain.ErrExternalSource, day.Key(), "variance", err)
	}

	rows := make([]dto.VarianceRowDTO, 0, len(ids))
	for _, id := range ids {
		expected := decimal.Zero
		name := names[id]
		if s, ok := snaps[id]; ok {
			expected = s.Quantity
			if s.Name != "" {
				name = s.Name
			}
		}
		if name == "" {
			name = id
		}
		v := used[id].Sub(expected)
		rows = append(rows, dto.VarianceRowDTO{
			IngredientID: id,
			Name:         name,
			Expected:     expected,
			Used:         used[id],
			Variance:     v,
			Severity:     uc.thresholds.Classify(v),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := rows[i].Variance.Abs(), rows[j].Variance.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		if !rows[i].Variance.Equal(rows[j].Variance) {
			return rows[i].Variance.GreaterThan(rows[j].Variance)
		}
		return rows[i].Name < rows[j].Name
	})

	uc.log.Debug().Str("shift_day", day.Key()).Int("ingredients", len(rows)).Msg("reporte de varianza calculado")
	return rows, nil
}
