package ingestion

import (
	"context"
	"time"
)

// ReceiptFeed fuente externa de recibos POS. Devuelve payloads sin tipar (formato legacy o v2)
// creados en [from, to). Los fallos deben envolver domain.ErrExternalSource.
type ReceiptFeed interface {
	FetchReceipts(ctx context.Context, from, to time.Time) ([]map[string]any, error)
}
