package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/shift-ledger/internal/application/backfill"
	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/application/ledger"
	"github.com/jhoicas/shift-ledger/internal/application/reconciliation"
	"github.com/jhoicas/shift-ledger/internal/application/shiftreport"
	"github.com/jhoicas/shift-ledger/internal/application/solditems"
	"github.com/jhoicas/shift-ledger/internal/application/variance"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// ShiftHandler expone el motor de días de turno: derivación, libros, conciliación,
// backfill y lecturas para dashboards.
type ShiftHandler struct {
	resolver  *shift.Resolver
	derive    *solditems.DeriveUseCase
	ledgers   *ledger.EngineUseCase
	reconcile *reconciliation.RebuildUseCase
	variance  *variance.ReportUseCase
	backfill  *backfill.Orchestrator
	report    *shiftreport.ReportUseCase
}

// NewShiftHandler construye el handler.
func NewShiftHandler(
	resolver *shift.Resolver,
	derive *solditems.DeriveUseCase,
	ledgers *ledger.EngineUseCase,
	reconcile *reconciliation.RebuildUseCase,
	varianceUC *variance.ReportUseCase,
	orchestrator *backfill.Orchestrator,
	report *shiftreport.ReportUseCase,
) *ShiftHandler {
	return &ShiftHandler{
		resolver:  resolver,
		derive:    derive,
		ledgers:   ledgers,
		reconcile: reconcile,
		variance:  varianceUC,
		backfill:  orchestrator,
		report:    report,
	}
}

// ResolveShiftDay godoc
// @Summary      Día de turno de un instante
// @Tags         shifts
// @Produce      json
// @Param        ts  query  string  true  "Instante RFC3339"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/shift-day [get]
func (h *ShiftHandler) ResolveShiftDay(c *fiber.Ctx) error {
	ts, err := time.Parse(time.RFC3339, c.Query("ts"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ts debe ser RFC3339"})
	}
	day := h.resolver.Resolve(ts)
	from, to := h.resolver.Window(day)
	return c.JSON(fiber.Map{"shift_day": day.Key(), "from": from, "to": to})
}

// DeriveSoldItems godoc
// @Summary      Derivar unidades vendidas de un rango
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RangeRequest  true  "start, end (YYYY-MM-DD)"
// @Success      200  {object}  dto.DeriveResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/shifts/derive [post]
func (h *ShiftHandler) DeriveSoldItems(c *fiber.Ctx) error {
	start, end, err := h.rangeBody(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.derive.DeriveSoldItems(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// RebuildReconciliation godoc
// @Summary      Reconstruir conciliaciones de un rango
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RangeRequest  true  "start, end (YYYY-MM-DD)"
// @Success      200  {object}  dto.ReconcileResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/shifts/reconcile [post]
func (h *ShiftHandler) RebuildReconciliation(c *fiber.Ctx) error {
	start, end, err := h.rangeBody(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.reconcile.RebuildReconciliation(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Backfill godoc
// @Summary      Recalcular un rango completo (sync → unidades → libros → conciliación)
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RangeRequest  true  "start, end (YYYY-MM-DD)"
// @Success      200  {object}  dto.BackfillResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/shifts/backfill [post]
func (h *ShiftHandler) Backfill(c *fiber.Ctx) error {
	start, end, err := h.rangeBody(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.backfill.Backfill(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// EnsureShift godoc
// @Summary      Asegurar que un día esté calculado
// @Tags         shifts
// @Produce      json
// @Param        day  path  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.EnsureResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/shifts/{day}/ensure [post]
func (h *ShiftHandler) EnsureShift(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.backfill.EnsureShift(c.UserContext(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ComputeLedger godoc
// @Summary      Recalcular el libro de un tipo para un día
// @Tags         ledgers
// @Produce      json
// @Param        day   path  string  true  "YYYY-MM-DD"
// @Param        kind  path  string  true  "rolls | meat | drinks"
// @Success      200  {object}  dto.LedgerEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/shifts/{day}/ledgers/{kind} [post]
func (h *ShiftHandler) ComputeLedger(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	kind := entity.LedgerKind(c.Params("kind"))
	if !kind.Valid() {
		return writeError(c, domain.ErrInvalidInput)
	}
	e, err := h.ledgers.ComputeAndUpsertLedger(c.UserContext(), kind, day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LedgerFromEntity(e))
}

// ConfirmBaseline godoc
// @Summary      Confirmar el inventario inicial de un día
// @Tags         ledgers
// @Accept       json
// @Produce      json
// @Param        day   path  string                       true  "YYYY-MM-DD"
// @Param        body  body  dto.ConfirmBaselineRequest  true  "kind, quantity, confirmed_by"
// @Success      200  {object}  dto.LedgerEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/shifts/{day}/baseline [post]
func (h *ShiftHandler) ConfirmBaseline(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ConfirmBaselineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	e, err := h.ledgers.ConfirmBaseline(c.UserContext(), entity.LedgerKind(in.Kind), day, in.Quantity, in.ConfirmedBy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LedgerFromEntity(e))
}

// GetReport godoc
// @Summary      Reporte del día para dashboards
// @Description  Con un paso fallido el estado es "failed"; sin libros, "not_computed".
// @Tags         shifts
// @Produce      json
// @Param        day  path  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.ShiftReportDTO
// @Router       /api/shifts/{day} [get]
func (h *ShiftHandler) GetReport(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.report.Get(c.UserContext(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetReconciliation godoc
// @Summary      Conciliación del día
// @Tags         shifts
// @Produce      json
// @Param        day  path  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.ReconciliationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{day}/reconciliation [get]
func (h *ShiftHandler) GetReconciliation(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	rec, err := h.reconcile.Get(c.UserContext(), day)
	if err != nil {
		return writeError(c, err)
	}
	if rec == nil {
		return writeError(c, domain.ErrNotFound)
	}
	return c.JSON(dto.ReconciliationFromEntity(rec))
}

// GetVariance godoc
// @Summary      Varianza por ingrediente del día
// @Tags         shifts
// @Produce      json
// @Param        day  path  string  true  "YYYY-MM-DD"
// @Success      200  {array}  dto.VarianceRowDTO
// @Router       /api/shifts/{day}/variance [get]
func (h *ShiftHandler) GetVariance(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.variance.ComputeShiftVariance(c.UserContext(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

func (h *ShiftHandler) rangeBody(c *fiber.Ctx) (shift.Day, shift.Day, error) {
	var in dto.RangeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return shift.Day{}, shift.Day{}, domain.ErrInvalidInput
		}
	}
	if in.Start == "" {
		in.Start, in.End = c.Query("start"), c.Query("end")
	}
	return parseRange(in)
}
