package pos_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/infrastructure/pos"
	"github.com/jhoicas/shift-ledger/pkg/config"
)

func TestFetchReceipts_RecorrePaginas(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/receipts", r.URL.Path)
		if r.URL.Query().Get("cursor") == "" {
			_, _ = w.Write([]byte(`{"receipts":[{"receipt_number":"1-1001","total_money":150.50}],"cursor":"next"}`))
			return
		}
		_, _ = w.Write([]byte(`{"receipts":[{"receipt_number":"1-1002"}]}`))
	}))
	defer srv.Close()

	c := pos.NewClient(config.POSConfig{BaseURL: srv.URL, Token: "tok", Timeout: time.Second})
	from := time.Date(2025, 10, 18, 20, 0, 0, 0, time.UTC)
	got, err := c.FetchReceipts(context.Background(), from, from.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, got, 2)
	assert.Equal(t, "1-1001", got[0]["receipt_number"])
	assert.Equal(t, json.Number("150.50"), got[0]["total_money"])
}

func TestFetchReceipts_ErrorHTTPEsFuenteExterna(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := pos.NewClient(config.POSConfig{BaseURL: srv.URL, Token: "tok", Timeout: time.Second})
	_, err := c.FetchReceipts(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalSource)
}

func TestFetchReceipts_SinToken(t *testing.T) {
	c := pos.NewClient(config.POSConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := c.FetchReceipts(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, domain.ErrExternalSource)
}
