package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jhoicas/shift-ledger/internal/domain"
)

// Códigos de salida.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // algún día o paso falló
	ExitCommandError = 2 // argumentos inválidos, sin conexión, etc.
)

// ExitError error con código de salida.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError crea un ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError envuelve err con un código de salida.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode código de salida de err; ExitFailure si no es un ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// commandError clasifica un error de caso de uso: entrada inválida es error de comando.
func commandError(message string, err error) *ExitError {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidShiftDay) {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}

// OutputFormatter salida JSON o texto.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response envoltorio de la salida JSON.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// Result imprime data. En texto usa text(); en JSON serializa data.
func (f *OutputFormatter) Result(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}
