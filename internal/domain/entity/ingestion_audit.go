package entity

import "time"

// Estados de un intento de sincronización.
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// IngestionAuditRecord registro append-only de cada intento de sincronización.
// Nunca se actualiza ni se borra.
type IngestionAuditRecord struct {
	ID         string
	Source     string
	ShiftDay   string
	WindowFrom time.Time
	WindowTo   time.Time
	Receipts   int
	LineItems  int
	Modifiers  int
	DurationMs int64
	Status     string
	Error      string
	CreatedAt  time.Time
}
