package dto

import "github.com/jhoicas/shift-ledger/internal/domain/entity"

// LedgerFromEntity convierte una fila de libro a su DTO.
func LedgerFromEntity(e *entity.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		Kind:            string(e.Kind),
		ShiftDay:        e.ShiftDay,
		Estimated:       e.Estimated,
		Purchased:       e.Purchased,
		ActualEnd:       e.ActualEnd,
		StartingImplied: e.StartingImplied,
		BaselineSource:  e.BaselineSource,
		Variance:        e.Variance,
		MissingMappings: e.MissingMappings,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ReconciliationFromEntity convierte un registro de conciliación a su DTO.
func ReconciliationFromEntity(r *entity.ReconciliationRecord) *ReconciliationDTO {
	if r == nil {
		return nil
	}
	return &ReconciliationDTO{
		ShiftDay:       r.ShiftDay,
		POSSales:       r.POSSales,
		DeclaredSales:  r.DeclaredSales,
		SalesVariance:  r.SalesVariance,
		DeclaredBuns:   r.DeclaredBuns,
		DeclaredMeat:   r.DeclaredMeat,
		HasDeclaration: r.HasDeclaration,
		Status:         r.Status,
		SoldItemCount:  r.SoldItemCount,
	}
}
