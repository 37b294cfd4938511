package ingestion_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/application/ingestion"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/memory"
)

type fakeFeed struct {
	payloads  []map[string]any
	err       error
	gotFrom   time.Time
	gotTo     time.Time
	callCount int
}

func (f *fakeFeed) FetchReceipts(_ context.Context, from, to time.Time) ([]map[string]any, error) {
	f.callCount++
	f.gotFrom, f.gotTo = from, to
	return f.payloads, f.err
}

func posReceipt(number, at string) map[string]any {
	return map[string]any{
		"receipt_number": number,
		"receipt_date":   at,
		"total_money":    json.Number("150"),
		"line_items": []any{
			map[string]any{"id": "li-" + number, "sku": "BURGER", "item_name": "Burger", "quantity": json.Number("1"), "price": json.Number("150")},
		},
	}
}

func newSync(feed ingestion.ReceiptFeed) (*ingestion.SyncUseCase, *memory.Store) {
	store := memory.NewStore()
	repos := store.Repos()
	audit := ingestion.NewAuditLog(repos.Audit)
	return ingestion.NewSyncUseCase(feed, repos.Receipts, audit, shift.Default, "loyverse", zerolog.Nop()), store
}

func TestSyncShift_RegistraRecibosYAuditoria(t *testing.T) {
	feed := &fakeFeed{payloads: []map[string]any{
		posReceipt("1", "2025-10-18T05:00:00Z"),
		posReceipt("2", "2025-10-18T09:30:00Z"),
	}}
	uc, store := newSync(feed)
	day := shift.NewDay(2025, 10, 18)

	res, err := uc.SyncShift(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Receipts)
	assert.Equal(t, 2, res.LineItems)
	assert.Equal(t, "2025-10-18", res.ShiftDay)
	assert.Equal(t, "loyverse", res.Source)

	from, to := shift.Default.Window(day)
	assert.True(t, feed.gotFrom.Equal(from))
	assert.True(t, feed.gotTo.Equal(to))
	assert.Equal(t, 2, store.Receipts())

	audits := store.Audits()
	require.Len(t, audits, 1)
	assert.Equal(t, entity.SyncStatusSuccess, audits[0].Status)
	assert.Equal(t, 2, audits[0].Receipts)
	assert.True(t, audits[0].WindowFrom.Equal(from))
}

func TestSyncShift_ReintentoNoDuplica(t *testing.T) {
	feed := &fakeFeed{payloads: []map[string]any{posReceipt("1", "2025-10-18T05:00:00Z")}}
	uc, store := newSync(feed)
	day := shift.NewDay(2025, 10, 18)

	for i := 0; i < 3; i++ {
		_, err := uc.SyncShift(context.Background(), day)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.Receipts())
	assert.Len(t, store.Audits(), 3, "la bitácora registra cada intento")
}

func TestSyncShift_FalloDeFuenteQuedaAuditado(t *testing.T) {
	feed := &fakeFeed{err: fmt.Errorf("pos caído: %w", domain.ErrExternalSource)}
	uc, store := newSync(feed)

	_, err := uc.SyncShift(context.Background(), shift.NewDay(2025, 10, 18))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalSource)
	var se *domain.ShiftError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "sync", se.Step)

	audits := store.Audits()
	require.Len(t, audits, 1)
	assert.Equal(t, entity.SyncStatusFailed, audits[0].Status)
	assert.Contains(t, audits[0].Error, "pos caído")
	assert.Zero(t, store.Receipts())
}

func TestSyncShift_ContextoCanceladoTambienSeAudita(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	feed := &fakeFeed{err: context.Canceled}
	uc, store := newSync(feed)

	_, err := uc.SyncShift(ctx, shift.NewDay(2025, 10, 18))
	require.Error(t, err)
	require.Len(t, store.Audits(), 1)
}

func TestFreshness(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	audit := ingestion.NewAuditLog(store.Repos().Audit)

	f, err := audit.Freshness(ctx, "loyverse", time.Hour)
	require.NoError(t, err)
	assert.True(t, f.Stale, "sin sincronizaciones la fuente está vencida")
	assert.Nil(t, f.LastSuccessAt)

	require.NoError(t, audit.Record(ctx, &entity.IngestionAuditRecord{
		Source: "loyverse", ShiftDay: "2025-10-18", Status: entity.SyncStatusSuccess, CreatedAt: time.Now().Add(-10 * time.Minute),
	}))
	require.NoError(t, audit.Record(ctx, &entity.IngestionAuditRecord{
		Source: "loyverse", ShiftDay: "2025-10-19", Status: entity.SyncStatusFailed, CreatedAt: time.Now(),
	}))

	f, err = audit.Freshness(ctx, "loyverse", time.Hour)
	require.NoError(t, err)
	assert.False(t, f.Stale)
	assert.Equal(t, "2025-10-18", f.LastShiftDay)
	require.NotNil(t, f.LastSuccessAt)

	f, err = audit.Freshness(ctx, "loyverse", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, f.Stale)
}

func TestAuditRecord_Validacion(t *testing.T) {
	audit := ingestion.NewAuditLog(memory.NewStore().Repos().Audit)
	err := audit.Record(context.Background(), &entity.IngestionAuditRecord{Source: "loyverse", ShiftDay: "2025-10-18", Status: "maybe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = audit.Record(context.Background(), &entity.IngestionAuditRecord{Status: entity.SyncStatusSuccess})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
