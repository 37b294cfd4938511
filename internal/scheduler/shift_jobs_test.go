package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/shift-ledger/internal/application/backfill/mocks"
	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/pkg/config"
)

type fakeBackfill struct {
	start, end shift.Day
	calls      int
	err        error
}

func (f *fakeBackfill) Backfill(_ context.Context, start, end shift.Day) (*dto.BackfillResultDTO, error) {
	f.calls++
	f.start, f.end = start, end
	if f.err != nil {
		return nil, f.err
	}
	return &dto.BackfillResultDTO{Start: start.Key(), End: end.Key(), Succeeded: len(shift.Range(start, end))}, nil
}

func newJobs(cfg config.SchedulerConfig, bf Backfiller, sync ShiftSyncer, now time.Time) *ShiftJobs {
	j := NewShiftJobs(cfg, shift.Default, bf, sync, zerolog.Nop())
	j.now = func() time.Time { return now }
	return j
}

func TestRecomputeRange(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		lookback  int
		wantStart string
		wantEnd   string
	}{
		{
			name:      "tres días terminando ayer",
			now:       time.Date(2025, 10, 20, 1, 0, 0, 0, time.UTC), // 08:00 local del 20
			lookback:  3,
			wantStart: "2025-10-17",
			wantEnd:   "2025-10-19",
		},
		{
			name:      "antes del corte el turno en curso es el del día anterior",
			now:       time.Date(2025, 10, 19, 19, 30, 0, 0, time.UTC), // 02:30 local del 20
			lookback:  1,
			wantStart: "2025-10-18",
			wantEnd:   "2025-10-18",
		},
		{
			name:      "lookback inválido se trata como uno",
			now:       time.Date(2025, 10, 20, 1, 0, 0, 0, time.UTC),
			lookback:  0,
			wantStart: "2025-10-19",
			wantEnd:   "2025-10-19",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newJobs(config.SchedulerConfig{LookbackDays: tt.lookback}, &fakeBackfill{}, nil, tt.now)
			start, end := j.RecomputeRange()
			assert.Equal(t, tt.wantStart, start.Key())
			assert.Equal(t, tt.wantEnd, end.Key())
		})
	}
}

func TestRunRecompute(t *testing.T) {
	now := time.Date(2025, 10, 20, 1, 0, 0, 0, time.UTC)

	t.Run("delegado al backfill", func(t *testing.T) {
		bf := &fakeBackfill{}
		j := newJobs(config.SchedulerConfig{LookbackDays: 2}, bf, nil, now)
		res, err := j.RunRecompute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, bf.calls)
		assert.Equal(t, "2025-10-18", bf.start.Key())
		assert.Equal(t, "2025-10-19", bf.end.Key())
		assert.Equal(t, 2, res.Succeeded)
	})

	t.Run("error del backfill", func(t *testing.T) {
		bf := &fakeBackfill{err: domain.ErrInvalidInput}
		j := newJobs(config.SchedulerConfig{LookbackDays: 2}, bf, nil, now)
		_, err := j.RunRecompute(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRunSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2025, 10, 19, 19, 30, 0, 0, time.UTC) // 02:30 local del 20 → turno del 19

	t.Run("sincroniza el turno en curso", func(t *testing.T) {
		syncer := mocks.NewMockSyncer(ctrl)
		syncer.EXPECT().
			SyncShift(gomock.Any(), shift.NewDay(2025, 10, 19)).
			Return(&dto.SyncResultDTO{ShiftDay: "2025-10-19", Receipts: 4}, nil)

		j := newJobs(config.SchedulerConfig{}, &fakeBackfill{}, syncer, now)
		require.NoError(t, j.RunSync(context.Background()))
	})

	t.Run("propaga el fallo de la fuente", func(t *testing.T) {
		syncer := mocks.NewMockSyncer(ctrl)
		syncer.EXPECT().SyncShift(gomock.Any(), gomock.Any()).Return(nil, domain.ErrExternalSource)

		j := newJobs(config.SchedulerConfig{}, &fakeBackfill{}, syncer, now)
		assert.True(t, errors.Is(j.RunSync(context.Background()), domain.ErrExternalSource))
	})

	t.Run("sin POS no hace nada", func(t *testing.T) {
		j := newJobs(config.SchedulerConfig{}, &fakeBackfill{}, nil, now)
		assert.NoError(t, j.RunSync(context.Background()))
	})
}

func TestStart(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("deshabilitado no registra trabajos", func(t *testing.T) {
		j := NewShiftJobs(config.SchedulerConfig{Enabled: false}, shift.Default, &fakeBackfill{}, nil, zerolog.Nop())
		require.NoError(t, j.Start(context.Background()))
		assert.Equal(t, 0, j.Jobs())
	})

	t.Run("registra recálculo y sincronización", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cfg := config.SchedulerConfig{
			Enabled:       true,
			RecomputeCron: "30 3 * * *",
			LookbackDays:  3,
			SyncEnabled:   true,
			SyncCron:      "*/15 * * * *",
		}
		j := NewShiftJobs(cfg, shift.Default, &fakeBackfill{}, mocks.NewMockSyncer(ctrl), zerolog.Nop())
		require.NoError(t, j.Start(ctx))
		assert.Equal(t, 2, j.Jobs())
	})

	t.Run("cron inválido", func(t *testing.T) {
		cfg := config.SchedulerConfig{Enabled: true, RecomputeCron: "no es cron"}
		j := NewShiftJobs(cfg, shift.Default, &fakeBackfill{}, nil, zerolog.Nop())
		assert.Error(t, j.Start(context.Background()))
	})
}
