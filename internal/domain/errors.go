package domain

import (
	"context"
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")

	ErrInvalidShiftDay = errors.New("día de turno inválido")

	// ErrMissingMapping producto vendido sin receta/SKU; su consumo cuenta como cero.
	ErrMissingMapping = errors.New("producto sin mapeo de receta")
	// ErrMissingDeclaration día con ventas POS sin declaración del personal.
	ErrMissingDeclaration = errors.New("día sin declaración del personal")
	// ErrExternalSource sincronización POS o consulta de formularios no disponible.
	ErrExternalSource = errors.New("fuente externa no disponible")
	// ErrInvariantViolation más de un registro para una clave natural (kind, día).
	ErrInvariantViolation = errors.New("violación de invariante")
	// ErrBaselineUnknown no hay inventario inicial confirmado para el día.
	ErrBaselineUnknown = errors.New("inventario inicial desconocido")
	// ErrShiftBusy otro proceso está recalculando el mismo día.
	ErrShiftBusy = errors.New("día de turno en proceso por otra ejecución")
	// ErrStorage fallo de la base de datos propia.
	ErrStorage = errors.New("error de persistencia")
)

// ShiftError error con contexto de día de turno y paso del pipeline.
// Unwrap expone tanto el tipo (Kind) como la causa, para usar errors.Is con ambos.
type ShiftError struct {
	Kind     error  // uno de los Err* de este paquete
	ShiftDay string // YYYY-MM-DD
	Step     string // sold_items, ledger:rolls, reconciliation, sync...
	Err      error  // causa original (puede ser nil)
}

// Error implementa la interfaz error.
func (e *ShiftError) Error() string {
	msg := fmt.Sprintf("%s [%s %s]", e.Kind.Error(), e.Step, e.ShiftDay)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap devuelve el tipo y la causa.
func (e *ShiftError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewShiftError construye un ShiftError.
func NewShiftError(kind error, shiftDay, step string, err error) *ShiftError {
	return &ShiftError{Kind: kind, ShiftDay: shiftDay, Step: step, Err: err}
}

// WrapShift agrega día y paso a err. Un ShiftError se devuelve tal cual; un error sin tipo
// de dominio conocido se clasifica como ErrStorage.
func WrapShift(err error, shiftDay, step string) error {
	if err == nil {
		return nil
	}
	var se *ShiftError
	if errors.As(err, &se) {
		return err
	}
	kind := ErrStorage
	for _, k := range []error{
		ErrMissingMapping, ErrMissingDeclaration, ErrExternalSource, ErrInvariantViolation,
		ErrBaselineUnknown, ErrShiftBusy, ErrInvalidInput, ErrInvalidShiftDay, ErrConflict,
		ErrNotFound, context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}
	return NewShiftError(kind, shiftDay, step, err)
}

// ErrorKind devuelve el nombre corto del tipo de error, para reportes y DTOs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingMapping):
		return "MissingMapping"
	case errors.Is(err, ErrMissingDeclaration):
		return "MissingDeclaration"
	case errors.Is(err, ErrExternalSource):
		return "ExternalSourceFailure"
	case errors.Is(err, ErrInvariantViolation):
		return "InvariantViolation"
	case errors.Is(err, ErrBaselineUnknown):
		return "BaselineUnknown"
	case errors.Is(err, ErrShiftBusy):
		return "ShiftBusy"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidShiftDay):
		return "InvalidInput"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Cancelled"
	case errors.Is(err, ErrStorage):
		return "StorageFailure"
	default:
		return "Internal"
	}
}
