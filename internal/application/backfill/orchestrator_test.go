package backfill_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/shift-ledger/internal/application/backfill"
	"github.com/jhoicas/shift-ledger/internal/application/backfill/mocks"
	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/ledger"
	"github.com/jhoicas/shift-ledger/internal/application/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/application/solditems"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	rules "github.com/jhoicas/shift-ledger/internal/domain/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/memory"
)

var bangkok = time.FixedZone("UTC+7", 7*3600)

type fixture struct {
	store  *memory.Store
	repos  memory.Repos
	syncer *mocks.MockSyncer
}

func (f *fixture) orchestrator(opts backfill.Options) *backfill.Orchestrator {
	o, _ := f.pipeline(opts)
	return o
}

// pipeline arma el orquestador y devuelve también el motor de libros para invocarlo directo.
func (f *fixture) pipeline(opts backfill.Options) (*backfill.Orchestrator, *ledger.EngineUseCase) {
	tx := memory.NewTxRunner(f.store)
	runs := runlog.NewRecorder(f.repos.Runs, zerolog.Nop())
	deriver := solditems.NewDeriveUseCase(f.repos.Receipts, f.repos.Recipes, tx, runs, shift.Default, solditems.DiscountNone, zerolog.Nop())
	engine := ledger.NewEngineUseCase(
		f.repos.SoldItems, f.repos.Recipes, f.repos.Declarations, f.repos.Baselines,
		ledger.NewStockPurchases(f.repos.Purchases), tx, runs, zerolog.Nop(),
	)
	rec := reconciliation.NewRebuildUseCase(f.repos.SoldItems, f.repos.Declarations, f.repos.Reconciliations, tx, runs, rules.DefaultThresholds(), zerolog.Nop())
	o := backfill.NewOrchestrator(
		f.syncer, deriver, engine, rec,
		f.repos.SoldItems, f.repos.Ledgers, runs, backfill.NewLocalDayLocker(),
		opts, zerolog.Nop(),
	)
	return o, engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	repos := store.Repos()
	store.PutPortions("BURGER", entity.RecipePortion{ProductCode: "BURGER", RecipeID: "rcp-1", Category: entity.IngredientRoll, QuantityPerUnit: decimal.NewFromInt(1)})
	return &fixture{store: store, repos: repos, syncer: mocks.NewMockSyncer(ctrl)}
}

// seedDay carga un recibo con qty hamburguesas al mediodía local del día.
func (f *fixture) seedDay(t *testing.T, day shift.Day, qty int) {
	t.Helper()
	d := day.Date()
	id := "r-" + day.Key()
	require.NoError(t, f.repos.Receipts.UpsertReceipts(context.Background(), []*entity.RawReceipt{{
		ID:        id,
		Source:    "loyverse",
		CreatedAt: time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, bangkok),
		LineItems: []entity.RawLineItem{{ID: id + ":0", ReceiptID: id, ProductCode: "BURGER", Quantity: qty, UnitPrice: decimal.NewFromInt(100)}},
	}}))
}

func TestBackfill_FalloDelDiaDosNoAfectaUnoYTres(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d1, d2, d3 := shift.NewDay(2025, 10, 17), shift.NewDay(2025, 10, 18), shift.NewDay(2025, 10, 19)
	for _, d := range []shift.Day{d1, d2, d3} {
		f.seedDay(t, d, 3)
	}

	f.syncer.EXPECT().SyncShift(gomock.Any(), d1).Return(&dto.SyncResultDTO{}, nil)
	f.syncer.EXPECT().SyncShift(gomock.Any(), d2).
		Return(nil, domain.NewShiftError(domain.ErrExternalSource, d2.Key(), "sync", fmt.Errorf("timeout")))
	f.syncer.EXPECT().SyncShift(gomock.Any(), d3).Return(&dto.SyncResultDTO{}, nil)

	o := f.orchestrator(backfill.Options{MaxConcurrentDays: 1, SyncBeforeDerive: true})
	res, err := o.Backfill(ctx, d1, d3)
	require.NoError(t, err)
	require.Len(t, res.Days, 3)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.Cancelled)

	assert.Equal(t, dto.DayStatusOK, res.Days[0].Status)
	assert.Equal(t, dto.DayStatusFailed, res.Days[1].Status)
	assert.Equal(t, "sync", res.Days[1].Step)
	assert.Equal(t, "ExternalSourceFailure", res.Days[1].ErrorKind)
	assert.Equal(t, dto.DayStatusOK, res.Days[2].Status)

	for _, d := range []shift.Day{d1, d3} {
		n, err := f.repos.SoldItems.CountByShiftDay(ctx, d.Key())
		require.NoError(t, err)
		assert.Equal(t, 3, n, d.Key())
		entries, err := f.repos.Ledgers.ListByShiftDay(ctx, d.Key())
		require.NoError(t, err)
		assert.Len(t, entries, 3, d.Key())
		rec, err := f.repos.Reconciliations.GetByShiftDay(ctx, d.Key())
		require.NoError(t, err)
		require.NotNil(t, rec, d.Key())
		assert.True(t, rec.POSSales.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, entity.ReconciliationFail, rec.Status, "sin declaración")
	}

	n, err := f.repos.SoldItems.CountByShiftDay(ctx, d2.Key())
	require.NoError(t, err)
	assert.Zero(t, n, "el día fallido no se deriva")

	runs, err := f.repos.Runs.ListByShiftDay(ctx, d2.Key())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, backfill.StepSync, runs[0].Step)
	assert.Equal(t, entity.RunStatusFailed, runs[0].Status)
}

func TestBackfill_EnParaleloEsIdempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	start, end := shift.NewDay(2025, 10, 10), shift.NewDay(2025, 10, 16)
	for _, d := range shift.Range(start, end) {
		f.seedDay(t, d, 2)
	}
	o := f.orchestrator(backfill.Options{MaxConcurrentDays: 4})

	for i := 0; i < 2; i++ {
		res, err := o.Backfill(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, 7, res.Succeeded)
	}
	for _, d := range shift.Range(start, end) {
		n, _ := f.repos.SoldItems.CountByShiftDay(ctx, d.Key())
		assert.Equal(t, 2, n)
		for _, kind := range entity.LedgerKinds {
			c, _ := f.repos.Ledgers.CountByKey(ctx, kind, d.Key())
			assert.Equal(t, 1, c)
		}
		c, _ := f.repos.Reconciliations.CountByShiftDay(ctx, d.Key())
		assert.Equal(t, 1, c)
	}
}

func TestBackfill_CanceladoAntesDeEmpezar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newFixture(t)
	o := f.orchestrator(backfill.Options{})

	res, err := o.Backfill(ctx, shift.NewDay(2025, 10, 1), shift.NewDay(2025, 10, 3))
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Zero(t, res.Succeeded)
	for _, d := range res.Days {
		assert.Equal(t, dto.DayStatusCancelled, d.Status)
	}
}

func TestBackfill_RangoInvalido(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(backfill.Options{MaxRangeDays: 5})

	_, err := o.Backfill(context.Background(), shift.NewDay(2025, 10, 3), shift.NewDay(2025, 10, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidShiftDay)
	_, err = o.Backfill(context.Background(), shift.NewDay(2025, 10, 1), shift.NewDay(2025, 10, 30))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnsureShift_SincronizaUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := shift.NewDay(2025, 10, 18)
	f.syncer.EXPECT().SyncShift(gomock.Any(), day).
		DoAndReturn(func(context.Context, shift.Day) (*dto.SyncResultDTO, error) {
			f.seedDay(t, day, 4)
			return &dto.SyncResultDTO{Receipts: 1}, nil
		}).Times(1)
	o := f.orchestrator(backfill.Options{})

	res, err := o.EnsureShift(ctx, day)
	require.NoError(t, err)
	assert.False(t, res.AlreadyComputed)
	assert.True(t, res.Synced)
	assert.Equal(t, 4, res.ItemsCreated)
	require.Len(t, res.Ledgers, 3)
	assert.True(t, res.Ledgers[0].Estimated.Equal(decimal.NewFromInt(4)))

	res, err = o.EnsureShift(ctx, day)
	require.NoError(t, err)
	assert.True(t, res.AlreadyComputed)
	assert.Len(t, res.Ledgers, 3)
}

func TestEnsureShift_PropagaElFalloDelPOS(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := shift.NewDay(2025, 10, 18)
	f.syncer.EXPECT().SyncShift(gomock.Any(), day).Return(nil, fmt.Errorf("502: %w", domain.ErrExternalSource))
	o := f.orchestrator(backfill.Options{})

	_, err := o.EnsureShift(ctx, day)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalSource)

	runs, err := f.repos.Runs.ListByShiftDay(ctx, day.Key())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, entity.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "ExternalSourceFailure", runs[0].ErrorKind)
}

func TestEnsureShift_ConMocksRespetaElOrden(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	day := shift.NewDay(2025, 10, 18)
	store := memory.NewStore()
	repos := store.Repos()

	syncer := mocks.NewMockSyncer(ctrl)
	deriver := mocks.NewMockDeriver(ctrl)
	ledgers := mocks.NewMockLedgerComputer(ctrl)
	reconciler := mocks.NewMockReconciler(ctrl)
	gomock.InOrder(
		syncer.EXPECT().SyncShift(gomock.Any(), day).Return(&dto.SyncResultDTO{}, nil),
		deriver.EXPECT().DeriveDay(gomock.Any(), day).Return(2, nil),
		ledgers.EXPECT().ComputeAll(gomock.Any(), day).Return([]*entity.LedgerEntry{{Kind: entity.LedgerRolls, ShiftDay: day.Key()}}, nil),
	)

	o := backfill.NewOrchestrator(syncer, deriver, ledgers, reconciler, repos.SoldItems, repos.Ledgers, runlog.NewRecorder(repos.Runs, zerolog.Nop()), nil, backfill.Options{}, zerolog.Nop())
	res, err := o.EnsureShift(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ItemsCreated)
	assert.Len(t, res.Ledgers, 1)
}

func TestLocalDayLocker_RespetaCancelacion(t *testing.T) {
	l := backfill.NewLocalDayLocker()
	unlock, err := l.Lock(context.Background(), "2025-10-18")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "2025-10-18")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(context.Background(), "2025-10-19")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "2025-10-18")
	require.NoError(t, err)
	again()
}
