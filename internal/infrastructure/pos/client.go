// Package pos adaptador HTTP del feed de recibos del punto de venta.
package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/shift-ledger/internal/application/ingestion"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/pkg/config"
)

// Verificar en tiempo de compilación que Client implementa ReceiptFeed.
var _ ingestion.ReceiptFeed = (*Client)(nil)

const (
	pageLimit = 250
	maxPages  = 200
	maxBody   = 16 * 1024 * 1024
)

// Client lee recibos del POS. Devuelve los payloads sin tipar: la normalización
// (formatos legacy y v2) ocurre en la capa de ingesta.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el adaptador. Si el token está vacío las llamadas devuelven
// error descriptivo en lugar de panic.
func NewClient(cfg config.POSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type receiptsPage struct {
	Receipts []map[string]any `json:"receipts"`
	Cursor   string           `json:"cursor"`
}

type apiError struct {
	Errors []struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

// FetchReceipts recorre las páginas de recibos creados en [from, to).
// Cualquier fallo se reporta como domain.ErrExternalSource.
func (c *Client) FetchReceipts(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	if c.token == "" {
		return nil, fmt.Errorf("POS: POS_TOKEN no configurado: %w", domain.ErrExternalSource)
	}
	var all []map[string]any
	cursor := ""
	for page := 0; page < maxPages; page++ {
		p, err := c.fetchPage(ctx, from, to, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Receipts...)
		if p.Cursor == "" {
			return all, nil
		}
		cursor = p.Cursor
	}
	return nil, fmt.Errorf("POS: más de %d páginas para [%s, %s): %w",
		maxPages, from.Format(time.RFC3339), to.Format(time.RFC3339), domain.ErrExternalSource)
}

func (c *Client) fetchPage(ctx context.Context, from, to time.Time, cursor string) (*receiptsPage, error) {
	q := url.Values{}
	q.Set("created_at_min", from.UTC().Format(time.RFC3339Nano))
	// created_at_max es inclusivo en la API; restar 1ms mantiene el intervalo semiabierto.
	q.Set("created_at_max", to.Add(-time.Millisecond).UTC().Format(time.RFC3339Nano))
	q.Set("limit", strconv.Itoa(pageLimit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/receipts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("POS: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("POS: timeout o cancelación: %w: %w", domain.ErrExternalSource, ctx.Err())
		}
		return nil, fmt.Errorf("POS: llamada HTTP fallida: %w: %w", domain.ErrExternalSource, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("POS: leer respuesta: %w: %w", domain.ErrExternalSource, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apiError
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && len(errResp.Errors) > 0 {
			return nil, fmt.Errorf("POS: error %s: %s: %w",
				errResp.Errors[0].Code, errResp.Errors[0].Details, domain.ErrExternalSource)
		}
		return nil, fmt.Errorf("POS: HTTP %d: %w", resp.StatusCode, domain.ErrExternalSource)
	}

	// UseNumber conserva montos como json.Number; float64 perdería precisión.
	dec := json.NewDecoder(bytes.NewReader(rawBody))
	dec.UseNumber()
	var page receiptsPage
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("POS: deserializar respuesta: %w: %w", domain.ErrExternalSource, err)
	}
	return &page, nil
}
