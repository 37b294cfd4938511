package backfill_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/application/backfill"
	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/shiftreport"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

func (f *fixture) report() *shiftreport.ReportUseCase {
	return shiftreport.NewReportUseCase(f.repos.Ledgers, f.repos.Reconciliations, f.repos.Runs)
}

func (f *fixture) failOn(op, day string) {
	f.store.SetFail(func(o, key string) error {
		if o == op && key == day {
			return errors.New("origen caído")
		}
		return nil
	})
}

func TestReporte_RecalculoDirectoLimpiaElFalloDelBackfill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := shift.NewDay(2025, 10, 18)
	f.seedDay(t, day, 2)
	o, engine := f.pipeline(backfill.Options{})

	f.failOn("purchases:rolls", day.Key())
	res, err := o.Backfill(ctx, day, day)
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)
	assert.Equal(t, "ledger:rolls", res.Days[0].Step)

	r, err := f.report().Get(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, dto.ReportFailed, r.State)

	f.store.SetFail(nil)
	_, err = engine.ComputeAll(ctx, day)
	require.NoError(t, err)

	r, err = f.report().Get(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, dto.ReportComputed, r.State)
	assert.Len(t, r.Ledgers, 3)
	for _, run := range r.Runs {
		assert.Equal(t, entity.RunStatusOK, run.Status, run.Step)
	}
}

func TestReporte_RecalculoDirectoFallidoNoMuestraCifrasViejas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := shift.NewDay(2025, 10, 18)
	f.seedDay(t, day, 2)
	f.store.PutPurchase(entity.LedgerRolls, day.Key(), decimal.NewFromInt(10))
	o, engine := f.pipeline(backfill.Options{})

	res, err := o.Backfill(ctx, day, day)
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded)

	r, err := f.report().Get(ctx, day)
	require.NoError(t, err)
	require.Equal(t, dto.ReportComputed, r.State)

	f.store.PutPurchase(entity.LedgerRolls, day.Key(), decimal.NewFromInt(5))
	f.failOn("tx:ledger:rolls", day.Key())
	_, err = engine.ComputeAndUpsertLedger(ctx, entity.LedgerRolls, day)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)

	r, err = f.report().Get(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, dto.ReportFailed, r.State)
	assert.Empty(t, r.Ledgers, "no se muestran compras de 10 cuando ya son 15")

	var failed []string
	for _, run := range r.Runs {
		if run.Status == entity.RunStatusFailed {
			failed = append(failed, run.Step)
		}
	}
	assert.Equal(t, []string{"ledger:rolls"}, failed)
}
