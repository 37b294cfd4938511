package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

type fakeBackfill struct {
	start, end shift.Day
	result     *dto.BackfillResultDTO
	err        error
}

func (f *fakeBackfill) Backfill(_ context.Context, start, end shift.Day) (*dto.BackfillResultDTO, error) {
	f.start, f.end = start, end
	return f.result, f.err
}

func (f *fakeBackfill) EnsureShift(_ context.Context, day shift.Day) (*dto.EnsureResultDTO, error) {
	return &dto.EnsureResultDTO{ShiftDay: day.Key(), AlreadyComputed: true}, f.err
}

type fakeLedgers struct {
	kinds []entity.LedgerKind
	by    string
}

func (f *fakeLedgers) ComputeAndUpsertLedger(_ context.Context, kind entity.LedgerKind, day shift.Day) (*entity.LedgerEntry, error) {
	f.kinds = append(f.kinds, kind)
	return &entity.LedgerEntry{Kind: kind, ShiftDay: day.Key(), BaselineSource: entity.BaselineUnknown}, nil
}

func (f *fakeLedgers) ConfirmBaseline(_ context.Context, kind entity.LedgerKind, day shift.Day, qty decimal.Decimal, by string) (*entity.LedgerEntry, error) {
	f.by = by
	return &entity.LedgerEntry{Kind: kind, ShiftDay: day.Key(), StartingImplied: &qty, BaselineSource: entity.BaselineOperatorConfirmed}, nil
}

type fakeFreshness struct{ res *dto.FreshnessDTO }

func (f *fakeFreshness) Freshness(_ context.Context, source string, _ time.Duration) (*dto.FreshnessDTO, error) {
	out := *f.res
	out.Source = source
	return &out, nil
}

func run(t *testing.T, svc *Services, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommandWith(func(context.Context, bool) (*Services, func(), error) {
		return svc, func() {}, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "ledgerctl", root.Use)
	for _, name := range []string{"backfill", "ensure", "reconcile", "ledger", "variance", "baseline", "freshness", "migrate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestBackfill(t *testing.T) {
	bf := &fakeBackfill{result: &dto.BackfillResultDTO{
		Start: "2025-10-17", End: "2025-10-18", Succeeded: 2,
		Days: []dto.DayResultDTO{{ShiftDay: "2025-10-17", Status: dto.DayStatusOK}, {ShiftDay: "2025-10-18", Status: dto.DayStatusOK}},
	}}
	out, err := run(t, &Services{Backfill: bf}, "backfill", "--start", "2025-10-17", "--end", "2025-10-18")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-17", bf.start.Key())
	assert.Equal(t, "2025-10-18", bf.end.Key())
	assert.Contains(t, out, "2 ok, 0 fallidos")
}

func TestBackfill_DiaFallidoSaleConUno(t *testing.T) {
	bf := &fakeBackfill{result: &dto.BackfillResultDTO{
		Start: "2025-10-18", End: "2025-10-18", Failed: 1,
		Days: []dto.DayResultDTO{{ShiftDay: "2025-10-18", Status: dto.DayStatusFailed, Step: "sync", ErrorKind: "ExternalSourceFailure"}},
	}}
	out, err := run(t, &Services{Backfill: bf}, "backfill", "--start", "2025-10-18")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "ExternalSourceFailure")
	assert.Equal(t, "2025-10-18", bf.end.Key(), "--end por defecto es --start")
}

func TestBackfill_ArgumentosInvalidos(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"día mal formado", []string{"backfill", "--start", "18/10/2025"}},
		{"rango invertido", []string{"backfill", "--start", "2025-10-18", "--end", "2025-10-17"}},
		{"formato desconocido", []string{"backfill", "--start", "2025-10-18", "--format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, &Services{Backfill: &fakeBackfill{}}, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestEnsure_PropagaElTipoDeError(t *testing.T) {
	_, err := run(t, &Services{Backfill: &fakeBackfill{err: domain.ErrInvalidShiftDay}}, "ensure", "2025-10-18")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, &Services{Backfill: &fakeBackfill{err: domain.ErrExternalSource}}, "ensure", "2025-10-18")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, errors.Is(err, domain.ErrExternalSource))
}

func TestLedger_TodosLosTiposEnJSON(t *testing.T) {
	lg := &fakeLedgers{}
	out, err := run(t, &Services{Ledgers: lg}, "ledger", "2025-10-18", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerKinds, lg.kinds)

	var resp struct {
		Status string               `json:"status"`
		Data   []dto.LedgerEntryDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, 3)
}

func TestLedger_TipoInvalido(t *testing.T) {
	_, err := run(t, &Services{Ledgers: &fakeLedgers{}}, "ledger", "2025-10-18", "--kind", "fries")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBaseline(t *testing.T) {
	lg := &fakeLedgers{}
	out, err := run(t, &Services{Ledgers: lg}, "baseline", "2025-10-18", "--kind", "rolls", "--qty", "20", "--by", "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", lg.by)
	assert.Contains(t, out, "operator_confirmed")

	_, err = run(t, &Services{Ledgers: lg}, "baseline", "2025-10-18", "--kind", "rolls", "--qty", "veinte", "--by", "ana")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFreshness(t *testing.T) {
	at := time.Date(2025, 10, 18, 5, 0, 0, 0, time.UTC)
	svc := &Services{Source: "loyverse", StaleAfter: time.Hour}

	svc.Freshness = &fakeFreshness{res: &dto.FreshnessDTO{LastSuccessAt: &at, LastShiftDay: "2025-10-18"}}
	out, err := run(t, svc, "freshness")
	require.NoError(t, err)
	assert.Contains(t, out, "loyverse")

	svc.Freshness = &fakeFreshness{res: &dto.FreshnessDTO{Stale: true}}
	out, err = run(t, svc, "freshness", "--source", "grab")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "grab: sin sincronizaciones exitosas")
}

func TestMigrate(t *testing.T) {
	called := false
	svc := &Services{Migrate: func(context.Context) error { called = true; return nil }}
	out, err := run(t, svc, "migrate")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, out, "esquema aplicado")
}
