package reconciliation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/application/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	rules "github.com/jhoicas/shift-ledger/internal/domain/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/memory"
)

func units(shiftDay string, amounts ...string) []*entity.SoldItem {
	items := make([]*entity.SoldItem, len(amounts))
	for i, a := range amounts {
		v := decimal.RequireFromString(a)
		items[i] = &entity.SoldItem{ID: fmt.Sprintf("%s-%d", shiftDay, i), ShiftDay: shiftDay, ProductCode: "BURGER", GrossAmount: v, NetAmount: v}
	}
	return items
}

func setup(t *testing.T) (*reconciliation.RebuildUseCase, *memory.Store, memory.Repos) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	uc := reconciliation.NewRebuildUseCase(
		repos.SoldItems, repos.Declarations, repos.Reconciliations,
		memory.NewTxRunner(store), nil, rules.DefaultThresholds(), zerolog.Nop(),
	)
	return uc, store, repos
}

func TestRebuildReconciliation_SinDeclaracionEsFail(t *testing.T) {
	ctx := context.Background()
	uc, _, repos := setup(t)
	require.NoError(t, repos.SoldItems.ReplaceShiftDay(ctx, "2025-10-18", units("2025-10-18", "1000", "1500", "500")))

	day := shift.NewDay(2025, 10, 18)
	res, err := uc.RebuildReconciliation(ctx, day, day)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ShiftsProcessed)
	assert.Equal(t, 1, res.RecordsCreated)

	rec, err := uc.Get(ctx, day)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.POSSales.Equal(decimal.NewFromInt(3000)))
	assert.True(t, rec.DeclaredSales.IsZero())
	assert.False(t, rec.HasDeclaration)
	assert.Equal(t, entity.ReconciliationFail, rec.Status)
	assert.Equal(t, 3, rec.SoldItemCount)
}

func TestRebuildReconciliation_Umbrales(t *testing.T) {
	tests := []struct {
		declared string
		want     string
	}{
		{"3100", entity.ReconciliationOK},
		{"2900", entity.ReconciliationOK},
		{"3100.01", entity.ReconciliationWarning},
		{"3500", entity.ReconciliationWarning},
		{"3500.01", entity.ReconciliationFail},
		{"2499.99", entity.ReconciliationFail},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			ctx := context.Background()
			uc, store, repos := setup(t)
			require.NoError(t, repos.SoldItems.ReplaceShiftDay(ctx, "2025-10-18", units("2025-10-18", "3000")))
			rolls := decimal.NewFromInt(12)
			store.PutDeclaration(&entity.DeclaredShift{ShiftDay: "2025-10-18", SalesTotal: decimal.RequireFromString(tt.declared), RollsEnd: &rolls})

			rec, err := uc.ReconcileDay(ctx, shift.NewDay(2025, 10, 18))
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.Status)
			assert.True(t, rec.SalesVariance.Equal(decimal.RequireFromString(tt.declared).Sub(decimal.NewFromInt(3000))))
			require.NotNil(t, rec.DeclaredBuns)
			assert.True(t, rec.DeclaredBuns.Equal(rolls))
		})
	}
}

func TestRebuildReconciliation_UnRegistroPorDia(t *testing.T) {
	ctx := context.Background()
	uc, _, repos := setup(t)
	for _, d := range []string{"2025-10-17", "2025-10-18"} {
		require.NoError(t, repos.SoldItems.ReplaceShiftDay(ctx, d, units(d, "100")))
	}
	start, end := shift.NewDay(2025, 10, 16), shift.NewDay(2025, 10, 19)

	for i := 0; i < 2; i++ {
		res, err := uc.RebuildReconciliation(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, 2, res.ShiftsProcessed)
		assert.Empty(t, res.Failures)
	}
	for _, d := range []string{"2025-10-17", "2025-10-18"} {
		n, err := repos.Reconciliations.CountByShiftDay(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, 1, n, d)
	}
	n, err := repos.Reconciliations.CountByShiftDay(ctx, "2025-10-16")
	require.NoError(t, err)
	assert.Zero(t, n, "sin unidades vendidas no hay registro")
}

func TestRebuildReconciliation_FalloDeUnDiaNoDetieneLosDemas(t *testing.T) {
	ctx := context.Background()
	uc, store, repos := setup(t)
	for _, d := range []string{"2025-10-17", "2025-10-18", "2025-10-19"} {
		require.NoError(t, repos.SoldItems.ReplaceShiftDay(ctx, d, units(d, "100")))
	}
	store.SetFail(func(op, key string) error {
		if op == "declarations:get" && key == "2025-10-18" {
			return memory.ErrInjected(op, key)
		}
		return nil
	})

	res, err := uc.RebuildReconciliation(ctx, shift.NewDay(2025, 10, 17), shift.NewDay(2025, 10, 19))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ShiftsProcessed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "2025-10-18", res.Failures[0].ShiftDay)
	assert.Equal(t, "ExternalSourceFailure", res.Failures[0].ErrorKind)
}

func TestReconcileDay_UmbralesConfigurables(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := reconciliation.NewRebuildUseCase(
		repos.SoldItems, repos.Declarations, repos.Reconciliations, memory.NewTxRunner(store), nil,
		rules.Thresholds{WarningAbove: decimal.NewFromInt(10), FailAbove: decimal.NewFromInt(50)},
		zerolog.Nop(),
	)
	require.NoError(t, repos.SoldItems.ReplaceShiftDay(ctx, "2025-10-18", units("2025-10-18", "200")))
	store.PutDeclaration(&entity.DeclaredShift{ShiftDay: "2025-10-18", SalesTotal: decimal.NewFromInt(230)})

	rec, err := uc.ReconcileDay(ctx, shift.NewDay(2025, 10, 18))
	require.NoError(t, err)
	assert.Equal(t, entity.ReconciliationWarning, rec.Status)
}
