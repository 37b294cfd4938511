// Package shiftreport arma la lectura de un día para dashboards: libros, conciliación y
// estado del pipeline.
package shiftreport

import (
	"context"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// ReportUseCase lectura de un día de turno.
type ReportUseCase struct {
	ledgers         repository.LedgerRepository
	reconciliations repository.ReconciliationRepository
	runs            repository.ShiftRunRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	ledgers repository.LedgerRepository,
	reconciliations repository.ReconciliationRepository,
	runs repository.ShiftRunRepository,
) *ReportUseCase {
	return &ReportUseCase{ledgers: ledgers, reconciliations: reconciliations, runs: runs}
}

// Get devuelve el reporte del día. Si el último intento de algún paso falló el estado es
// "failed" y no se devuelven cifras; sin los tres libros el estado es "not_computed".
func (uc *ReportUseCase) Get(ctx context.Context, day shift.Day) (*dto.ShiftReportDTO, error) {
	key := day.Key()
	runs, err := uc.runs.ListByShiftDay(ctx, key)
	if err != nil {
		return nil, domain.WrapShift(err, key, "report")
	}
	out := &dto.ShiftReportDTO{ShiftDay: key, Runs: make([]dto.ShiftRunDTO, 0, len(runs))}
	failed := false
	for _, r := range runs {
		if r.Status == entity.RunStatusFailed {
			failed = true
		}
		out.Runs = append(out.Runs, dto.ShiftRunDTO{
			Step:       r.Step,
			Status:     r.Status,
			ErrorKind:  r.ErrorKind,
			Error:      r.Error,
			FinishedAt: r.FinishedAt,
		})
	}
	if failed {
		out.State = dto.ReportFailed
		return out, nil
	}

	entries, err := uc.ledgers.ListByShiftDay(ctx, key)
	if err != nil {
		return nil, domain.WrapShift(err, key, "report")
	}
	if len(entries) < len(entity.LedgerKinds) {
		out.State = dto.ReportNotComputed
		return out, nil
	}
	rec, err := uc.reconciliations.GetByShiftDay(ctx, key)
	if err != nil {
		return nil, domain.WrapShift(err, key, "report")
	}

	out.State = dto.ReportComputed
	for _, e := range entries {
		out.Ledgers = append(out.Ledgers, dto.LedgerFromEntity(e))
	}
	out.Reconciliation = dto.ReconciliationFromEntity(rec)
	return out, nil
}
