// Package runlog guarda el último resultado de cada paso del pipeline por día de turno.
// Lo comparten el orquestador y los casos de uso que se invocan directamente, de modo que el
// estado que lee el dashboard refleja la última ejecución sin importar el punto de entrada.
package runlog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

// Pasos del pipeline, tal como quedan en shift_runs.
const (
	StepSync           = "sync"
	StepSoldItems      = "sold_items"
	StepReconciliation = "reconciliation"
)

// StepLedger paso del libro de un tipo (ledger:rolls, ledger:meat, ledger:drinks).
func StepLedger(kind entity.LedgerKind) string { return "ledger:" + string(kind) }

// Recorder escribe en shift_runs. Un Recorder nil no hace nada.
type Recorder struct {
	runs repository.ShiftRunRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewRecorder construye el recorder; runs nil devuelve nil.
func NewRecorder(runs repository.ShiftRunRepository, log zerolog.Logger) *Recorder {
	if runs == nil {
		return nil
	}
	return &Recorder{runs: runs, log: log.With().Str("component", "runlog").Logger(), now: time.Now}
}

// Record guarda ok o failed para (día, paso). Usa un contexto propio para que un día
// cancelado también quede marcado; un error al guardar solo se registra en el log.
func (r *Recorder) Record(ctx context.Context, shiftDay, step string, stepErr error) {
	if r == nil {
		return
	}
	run := &entity.ShiftRun{ShiftDay: shiftDay, Step: step, Status: entity.RunStatusOK, FinishedAt: r.now()}
	if stepErr != nil {
		run.Status = entity.RunStatusFailed
		run.ErrorKind = domain.ErrorKind(stepErr)
		run.Error = stepErr.Error()
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.runs.Record(rctx, run); err != nil {
		r.log.Error().Err(err).Str("shift_day", shiftDay).Str("step", step).Msg("no se pudo registrar el estado del paso")
	}
}
