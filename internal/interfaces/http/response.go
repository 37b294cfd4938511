package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// writeError traduce errores de dominio a códigos HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidShiftDay):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrShiftBusy):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SHIFT_BUSY", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrExternalSource):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "EXTERNAL_SOURCE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvariantViolation):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INVARIANT_VIOLATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// dayParam lee el parámetro :day (YYYY-MM-DD).
func dayParam(c *fiber.Ctx) (shift.Day, error) {
	d, err := shift.ParseDay(c.Params("day"))
	if err != nil {
		return shift.Day{}, errors.Join(domain.ErrInvalidShiftDay, err)
	}
	return d, nil
}

// parseRange valida un RangeRequest; End vacío equivale a Start.
func parseRange(in dto.RangeRequest) (shift.Day, shift.Day, error) {
	start, err := shift.ParseDay(in.Start)
	if err != nil {
		return shift.Day{}, shift.Day{}, errors.Join(domain.ErrInvalidShiftDay, err)
	}
	if in.End == "" {
		return start, start, nil
	}
	end, err := shift.ParseDay(in.End)
	if err != nil {
		return shift.Day{}, shift.Day{}, errors.Join(domain.ErrInvalidShiftDay, err)
	}
	if end.Before(start) {
		return shift.Day{}, shift.Day{}, domain.ErrInvalidShiftDay
	}
	return start, end, nil
}
