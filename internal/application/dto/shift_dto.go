package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayFailure fallo de un día dentro de una operación por rango.
type DayFailure struct {
	ShiftDay  string `json:"shift_day"`
	Step      string `json:"step"`
	ErrorKind string `json:"error_kind"`
	Error     string `json:"error"`
}

// DeriveResultDTO resultado de derivar unidades vendidas sobre un rango.
type DeriveResultDTO struct {
	ShiftsProcessed int          `json:"shifts_processed"`
	ItemsCreated    int          `json:"items_created"`
	Failures        []DayFailure `json:"failures,omitempty"`
}

// ReconcileResultDTO resultado de reconstruir conciliaciones sobre un rango.
type ReconcileResultDTO struct {
	ShiftsProcessed int          `json:"shifts_processed"`
	RecordsCreated  int          `json:"records_created"`
	Failures        []DayFailure `json:"failures,omitempty"`
}

// LedgerEntryDTO fila de libro de stock para respuestas.
type LedgerEntryDTO struct {
	Kind            string           `json:"kind"`
	ShiftDay        string           `json:"shift_day"`
	Estimated       decimal.Decimal  `json:"estimated"`
	Purchased       decimal.Decimal  `json:"purchased"`
	ActualEnd       *decimal.Decimal `json:"actual_end"`
	StartingImplied *decimal.Decimal `json:"starting_implied"`
	BaselineSource  string           `json:"baseline_source"`
	Variance        *decimal.Decimal `json:"variance"`
	MissingMappings []string         `json:"missing_mappings,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ReconciliationDTO registro de conciliación del día.
type ReconciliationDTO struct {
	ShiftDay       string           `json:"shift_day"`
	POSSales       decimal.Decimal  `json:"pos_sales"`
	DeclaredSales  decimal.Decimal  `json:"declared_sales"`
	SalesVariance  decimal.Decimal  `json:"sales_variance"`
	DeclaredBuns   *decimal.Decimal `json:"declared_buns"`
	DeclaredMeat   *decimal.Decimal `json:"declared_meat"`
	HasDeclaration bool             `json:"has_declaration"`
	Status         string           `json:"status"`
	SoldItemCount  int              `json:"sold_item_count"`
}

// VarianceRowDTO fila del reporte de varianza por ingrediente.
type VarianceRowDTO struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Expected     decimal.Decimal `json:"expected"`
	Used         decimal.Decimal `json:"used"`
	Variance     decimal.Decimal `json:"variance"`
	Severity     string          `json:"severity"`
}

// SyncResultDTO resultado de sincronizar un día desde el POS.
type SyncResultDTO struct {
	Source     string `json:"source"`
	ShiftDay   string `json:"shift_day"`
	Receipts   int    `json:"receipts"`
	LineItems  int    `json:"line_items"`
	Modifiers  int    `json:"modifiers"`
	Skipped    int    `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
}

// FreshnessDTO estado de frescura de una fuente de datos.
type FreshnessDTO struct {
	Source        string     `json:"source"`
	LastSuccessAt *time.Time `json:"last_success_at"`
	LastShiftDay  string     `json:"last_shift_day,omitempty"`
	AgeSeconds    int64      `json:"age_seconds"`
	Stale         bool       `json:"stale"`
}

// Estados de un día dentro de un backfill.
const (
	DayStatusOK        = "ok"
	DayStatusFailed    = "failed"
	DayStatusCancelled = "cancelled"
)

// DayResultDTO resultado del pipeline para un día.
type DayResultDTO struct {
	ShiftDay       string `json:"shift_day"`
	Status         string `json:"status"`
	ItemsCreated   int    `json:"items_created"`
	LedgersWritten int    `json:"ledgers_written"`
	Reconciled     bool   `json:"reconciled"`
	Step           string `json:"step,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
	Error          string `json:"error,omitempty"`
}

// BackfillResultDTO resultado de un backfill por rango; un día fallido no aborta los demás.
type BackfillResultDTO struct {
	Start     string         `json:"start"`
	End       string         `json:"end"`
	Days      []DayResultDTO `json:"days"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Cancelled bool           `json:"cancelled"`
}

// EnsureResultDTO resultado de ensureShift.
type EnsureResultDTO struct {
	ShiftDay        string           `json:"shift_day"`
	AlreadyComputed bool             `json:"already_computed"`
	Synced          bool             `json:"synced"`
	ItemsCreated    int              `json:"items_created"`
	Ledgers         []LedgerEntryDTO `json:"ledgers"`
}

// Estados del reporte de un día para dashboards.
const (
	ReportComputed    = "computed"
	ReportFailed      = "failed"
	ReportNotComputed = "not_computed"
)

// ShiftRunDTO estado de un paso del pipeline.
type ShiftRunDTO struct {
	Step       string    `json:"step"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// ShiftReportDTO lectura de dashboard de un día. Con State distinto de "computed"
// no se devuelven cifras.
type ShiftReportDTO struct {
	ShiftDay       string             `json:"shift_day"`
	State          string             `json:"state"`
	Ledgers        []LedgerEntryDTO   `json:"ledgers,omitempty"`
	Reconciliation *ReconciliationDTO `json:"reconciliation,omitempty"`
	Runs           []ShiftRunDTO      `json:"runs,omitempty"`
}

// ConfirmBaselineRequest body para confirmar el inventario inicial de un día.
type ConfirmBaselineRequest struct {
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	ConfirmedBy string          `json:"confirmed_by"`
}
