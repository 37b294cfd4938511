package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/ingestion"
)

// IngestionHandler sincronización POS y frescura de datos.
type IngestionHandler struct {
	sync       *ingestion.SyncUseCase
	audit      *ingestion.AuditLog
	source     string
	staleAfter time.Duration
}

// NewIngestionHandler construye el handler. sync puede ser nil si no hay POS configurado.
func NewIngestionHandler(sync *ingestion.SyncUseCase, audit *ingestion.AuditLog, source string, staleAfter time.Duration) *IngestionHandler {
	return &IngestionHandler{sync: sync, audit: audit, source: source, staleAfter: staleAfter}
}

// SyncShift godoc
// @Summary      Sincronizar recibos POS de un día
// @Tags         ingestion
// @Produce      json
// @Param        day  path  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.SyncResultDTO
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/shifts/{day}/sync [post]
func (h *IngestionHandler) SyncShift(c *fiber.Ctx) error {
	if h.sync == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "POS_DISABLED", Message: "sin fuente POS configurada"})
	}
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.sync.SyncShift(c.UserContext(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Freshness godoc
// @Summary      Frescura de la última sincronización exitosa
// @Tags         ingestion
// @Produce      json
// @Param        source  query  string  false  "Fuente (por defecto la configurada)"
// @Success      200  {object}  dto.FreshnessDTO
// @Router       /api/ingestion/freshness [get]
func (h *IngestionHandler) Freshness(c *fiber.Ctx) error {
	source := c.Query("source", h.source)
	res, err := h.audit.Freshness(c.UserContext(), source, h.staleAfter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ListAudits godoc
// @Summary      Intentos de sincronización de un día
// @Tags         ingestion
// @Produce      json
// @Param        day  path  string  true  "YYYY-MM-DD"
// @Success      200  {array}  map[string]interface{}
// @Router       /api/shifts/{day}/ingestion [get]
func (h *IngestionHandler) ListAudits(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	recs, err := h.audit.ListByShiftDay(c.UserContext(), day.Key())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]fiber.Map, 0, len(recs))
	for _, r := range recs {
		out = append(out, fiber.Map{
			"source":      r.Source,
			"window_from": r.WindowFrom,
			"window_to":   r.WindowTo,
			"receipts":    r.Receipts,
			"line_items":  r.LineItems,
			"modifiers":   r.Modifiers,
			"duration_ms": r.DurationMs,
			"status":      r.Status,
			"error":       r.Error,
			"created_at":  r.CreatedAt,
		})
	}
	return c.JSON(out)
}
