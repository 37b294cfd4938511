package runlog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/application/runlog"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/memory"
)

func TestRecord_UltimoResultadoPorPaso(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	r := runlog.NewRecorder(repos.Runs, zerolog.Nop())
	step := runlog.StepLedger(entity.LedgerMeat)

	r.Record(ctx, "2025-10-18", step, fmt.Errorf("compras: %w", domain.ErrExternalSource))
	runs, err := repos.Runs.ListByShiftDay(ctx, "2025-10-18")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ledger:meat", runs[0].Step)
	assert.Equal(t, entity.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "ExternalSourceFailure", runs[0].ErrorKind)

	r.Record(ctx, "2025-10-18", step, nil)
	runs, err = repos.Runs.ListByShiftDay(ctx, "2025-10-18")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, entity.RunStatusOK, runs[0].Status)
	assert.Empty(t, runs[0].Error)
}

func TestRecord_ContextoCanceladoIgualRegistra(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repos := memory.NewStore().Repos()
	runlog.NewRecorder(repos.Runs, zerolog.Nop()).Record(ctx, "2025-10-18", runlog.StepSync, context.Canceled)

	runs, err := repos.Runs.ListByShiftDay(context.Background(), "2025-10-18")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Cancelled", runs[0].ErrorKind)
}

func TestRecorderNil_NoHaceNada(t *testing.T) {
	var r *runlog.Recorder
	assert.NotPanics(t, func() { r.Record(context.Background(), "2025-10-18", runlog.StepSync, nil) })
	assert.Nil(t, runlog.NewRecorder(nil, zerolog.Nop()))
}
