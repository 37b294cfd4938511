package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/repository"
)

var (
	_ repository.ReceiptRepository          = (*ReceiptRepo)(nil)
	_ repository.SoldItemRepository         = (*SoldItemRepo)(nil)
	_ repository.LedgerRepository           = (*LedgerRepo)(nil)
	_ repository.BaselineRepository         = (*BaselineRepo)(nil)
	_ repository.ReconciliationRepository   = (*ReconciliationRepo)(nil)
	_ repository.IngestionAuditRepository   = (*IngestionAuditRepo)(nil)
	_ repository.PurchaseRepository         = (*PurchaseRepo)(nil)
	_ repository.DeclarationRepository      = (*DeclarationRepo)(nil)
	_ repository.RecipeRepository           = (*RecipeRepo)(nil)
	_ repository.StockSnapshotRepository    = (*StockSnapshotRepo)(nil)
	_ repository.ConsumptionEventRepository = (*ConsumptionEventRepo)(nil)
	_ repository.ShiftRunRepository         = (*ShiftRunRepo)(nil)
)

// Repos todos los adaptadores sobre un mismo store.
type Repos struct {
	Receipts          *ReceiptRepo
	SoldItems         *SoldItemRepo
	Ledgers           *LedgerRepo
	Baselines         *BaselineRepo
	Reconciliations   *ReconciliationRepo
	Audit             *IngestionAuditRepo
	Purchases         *PurchaseRepo
	Declarations      *DeclarationRepo
	Recipes           *RecipeRepo
	Stock             *StockSnapshotRepo
	ConsumptionEvents *ConsumptionEventRepo
	Runs              *ShiftRunRepo
}

// Repos construye los adaptadores del store.
func (s *Store) Repos() Repos {
	return Repos{
		Receipts:          &ReceiptRepo{s: s},
		SoldItems:         &SoldItemRepo{s: s},
		Ledgers:           &LedgerRepo{s: s},
		Baselines:         &BaselineRepo{s: s},
		Reconciliations:   &ReconciliationRepo{s: s},
		Audit:             &IngestionAuditRepo{s: s},
		Purchases:         &PurchaseRepo{s: s},
		Declarations:      &DeclarationRepo{s: s},
		Recipes:           &RecipeRepo{s: s},
		Stock:             &StockSnapshotRepo{s: s},
		ConsumptionEvents: &ConsumptionEventRepo{s: s},
		Runs:              &ShiftRunRepo{s: s},
	}
}

// ── Recibos ───────────────────────────────────────────────────────────────────

// ReceiptRepo recibos POS en memoria.
type ReceiptRepo struct{ s *Store }

// UpsertReceipts inserta los recibos que no existen.
func (r *ReceiptRepo) UpsertReceipts(_ context.Context, receipts []*entity.RawReceipt) error {
	if err := r.s.check("receipts:upsert", ""); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rc := range receipts {
		if _, ok := r.s.receipts[rc.ID]; ok {
			continue
		}
		cp := *rc
		cp.LineItems = append([]entity.RawLineItem(nil), rc.LineItems...)
		r.s.receipts[rc.ID] = &cp
	}
	return nil
}

// ListByWindow recibos con CreatedAt en [from, to) ordenados por fecha e id.
func (r *ReceiptRepo) ListByWindow(_ context.Context, from, to time.Time) ([]*entity.RawReceipt, error) {
	if err := r.s.check("receipts:list", from.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.RawReceipt
	for _, rc := range r.s.receipts {
		if !rc.CreatedAt.Before(from) && rc.CreatedAt.Before(to) {
			cp := *rc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ── Unidades vendidas ─────────────────────────────────────────────────────────

// SoldItemRepo unidades vendidas en memoria.
type SoldItemRepo struct{ s *Store }

// ReplaceShiftDay reemplaza todas las unidades del día.
func (r *SoldItemRepo) ReplaceShiftDay(_ context.Context, shiftDay string, items []*entity.SoldItem) error {
	if err := r.s.check("sold_items:replace", shiftDay); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := make([]*entity.SoldItem, 0, len(items))
	for _, it := range items {
		if it.ShiftDay != shiftDay {
			return fmt.Errorf("sold item %s pertenece a %s, no a %s", it.ID, it.ShiftDay, shiftDay)
		}
		c := *it
		c.Modifiers = append([]entity.SoldItemModifier(nil), it.Modifiers...)
		cp = append(cp, &c)
	}
	if len(cp) == 0 {
		delete(r.s.soldItems, shiftDay)
		return nil
	}
	r.s.soldItems[shiftDay] = cp
	return nil
}

// ListByShiftDay unidades del día.
func (r *SoldItemRepo) ListByShiftDay(_ context.Context, shiftDay string) ([]*entity.SoldItem, error) {
	if err := r.s.check("sold_items:list", shiftDay); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.SoldItem, 0, len(r.s.soldItems[shiftDay]))
	for _, it := range r.s.soldItems[shiftDay] {
		c := *it
		out = append(out, &c)
	}
	return out, nil
}

// CountByShiftDay cantidad de unidades del día.
func (r *SoldItemRepo) CountByShiftDay(_ context.Context, shiftDay string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.soldItems[shiftDay]), nil
}

// SumNetByShiftDay suma de NetAmount y cantidad de unidades del día.
func (r *SoldItemRepo) SumNetByShiftDay(_ context.Context, shiftDay string) (decimal.Decimal, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, it := range r.s.soldItems[shiftDay] {
		total = total.Add(it.NetAmount)
	}
	return total, len(r.s.soldItems[shiftDay]), nil
}

// ListShiftDays días con unidades entre fromDay y toDay inclusive.
func (r *SoldItemRepo) ListShiftDays(_ context.Context, fromDay, toDay string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var days []string
	for _, d := range sortedKeys(r.s.soldItems) {
		if d >= fromDay && d <= toDay && len(r.s.soldItems[d]) > 0 {
			days = append(days, d)
		}
	}
	return days, nil
}

// ── Libros ────────────────────────────────────────────────────────────────────

// LedgerRepo libros de stock en memoria.
type LedgerRepo struct{ s *Store }

// Upsert inserta o actualiza por (kind, día). Conserva ID y CreatedAt; UpdatedAt solo cambia
// si cambian los valores.
func (r *LedgerRepo) Upsert(_ context.Context, e *entity.LedgerEntry) error {
	if err := r.s.check("ledger:upsert:"+string(e.Kind), e.ShiftDay); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := ledgerKey(e.Kind, e.ShiftDay)
	now := r.s.now()
	cp := *e
	if rows := r.s.ledgers[k]; len(rows) > 0 {
		prev := rows[0]
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
		cp.UpdatedAt = prev.UpdatedAt
		if !sameLedgerValues(prev, &cp) {
			cp.UpdatedAt = now
		}
		rows[0] = &cp
	} else {
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		cp.CreatedAt, cp.UpdatedAt = now, now
		r.s.ledgers[k] = []*entity.LedgerEntry{&cp}
	}
	e.ID, e.CreatedAt, e.UpdatedAt = cp.ID, cp.CreatedAt, cp.UpdatedAt
	return nil
}

func sameLedgerValues(a, b *entity.LedgerEntry) bool {
	if !a.Estimated.Equal(b.Estimated) || !a.Purchased.Equal(b.Purchased) || a.BaselineSource != b.BaselineSource {
		return false
	}
	if !equalPtr(a.ActualEnd, b.ActualEnd) || !equalPtr(a.StartingImplied, b.StartingImplied) || !equalPtr(a.Variance, b.Variance) {
		return false
	}
	if len(a.MissingMappings) != len(b.MissingMappings) {
		return false
	}
	for i := range a.MissingMappings {
		if a.MissingMappings[i] != b.MissingMappings[i] {
			return false
		}
	}
	return true
}

func equalPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Get fila de (kind, día); nil si no existe.
func (r *LedgerRepo) Get(_ context.Context, kind entity.LedgerKind, shiftDay string) (*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.ledgers[ledgerKey(kind, shiftDay)]
	if len(rows) == 0 {
		return nil, nil
	}
	cp := *rows[0]
	return &cp, nil
}

// CountByKey filas de (kind, día).
func (r *LedgerRepo) CountByKey(_ context.Context, kind entity.LedgerKind, shiftDay string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.ledgers[ledgerKey(kind, shiftDay)]), nil
}

// ListByShiftDay libros del día ordenados por kind.
func (r *LedgerRepo) ListByShiftDay(_ context.Context, shiftDay string) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.LedgerEntry
	for _, k := range sortedKeys(r.s.ledgers) {
		for _, e := range r.s.ledgers[k] {
			if e.ShiftDay == shiftDay {
				cp := *e
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

// BaselineRepo confirmaciones de inventario inicial en memoria.
type BaselineRepo struct{ s *Store }

// Upsert registra la confirmación de (kind, día).
func (r *BaselineRepo) Upsert(_ context.Context, b *entity.BaselineConfirmation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *b
	r.s.baselines[ledgerKey(b.Kind, b.ShiftDay)] = &cp
	return nil
}

// Get confirmación de (kind, día); nil si no hay.
func (r *BaselineRepo) Get(_ context.Context, kind entity.LedgerKind, shiftDay string) (*entity.BaselineConfirmation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.baselines[ledgerKey(kind, shiftDay)]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// ── Conciliación ──────────────────────────────────────────────────────────────

// ReconciliationRepo registros de conciliación en memoria.
type ReconciliationRepo struct{ s *Store }

// DeleteByShiftDay borra los registros del día.
func (r *ReconciliationRepo) DeleteByShiftDay(_ context.Context, shiftDay string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.recs, shiftDay)
	return nil
}

// Create agrega un registro; como la restricción única de la tabla, rechaza un segundo.
func (r *ReconciliationRepo) Create(_ context.Context, rec *entity.ReconciliationRecord) error {
	if err := r.s.check("reconciliation:create", rec.ShiftDay); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.recs[rec.ShiftDay]) > 0 {
		return fmt.Errorf("reconciliation %s: %w", rec.ShiftDay, domain.ErrConflict)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = r.s.now()
	cp := *rec
	r.s.recs[rec.ShiftDay] = []*entity.ReconciliationRecord{&cp}
	return nil
}

// GetByShiftDay registro del día; nil si no existe.
func (r *ReconciliationRepo) GetByShiftDay(_ context.Context, shiftDay string) (*entity.ReconciliationRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.recs[shiftDay]
	if len(rows) == 0 {
		return nil, nil
	}
	cp := *rows[0]
	return &cp, nil
}

// CountByShiftDay registros del día.
func (r *ReconciliationRepo) CountByShiftDay(_ context.Context, shiftDay string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.recs[shiftDay]), nil
}

// ── Bitácoras y lecturas externas ─────────────────────────────────────────────

// IngestionAuditRepo bitácora de ingesta en memoria (append-only).
type IngestionAuditRepo struct{ s *Store }

// Append agrega el registro.
func (r *IngestionAuditRepo) Append(_ context.Context, rec *entity.IngestionAuditRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.s.now()
	}
	cp := *rec
	r.s.audits = append(r.s.audits, &cp)
	return nil
}

// LatestSuccessful último registro exitoso de la fuente.
func (r *IngestionAuditRepo) LatestSuccessful(_ context.Context, source string) (*entity.IngestionAuditRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *entity.IngestionAuditRecord
	for _, a := range r.s.audits {
		if a.Source != source || a.Status != entity.SyncStatusSuccess {
			continue
		}
		if best == nil || !a.CreatedAt.Before(best.CreatedAt) {
			best = a
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

// ListByShiftDay registros del día, más recientes primero.
func (r *IngestionAuditRepo) ListByShiftDay(_ context.Context, shiftDay string) ([]*entity.IngestionAuditRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.IngestionAuditRecord
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		if r.s.audits[i].ShiftDay == shiftDay {
			cp := *r.s.audits[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// PurchaseRepo reposiciones en memoria.
type PurchaseRepo struct{ s *Store }

// RollsPurchased panes comprados en el día.
func (r *PurchaseRepo) RollsPurchased(_ context.Context, shiftDay string) (decimal.Decimal, error) {
	return r.get("purchases:rolls", r.s.rolls, shiftDay)
}

// MeatReceivedGrams gramos de carne recibidos en el día.
func (r *PurchaseRepo) MeatReceivedGrams(_ context.Context, shiftDay string) (decimal.Decimal, error) {
	return r.get("purchases:meat", r.s.meat, shiftDay)
}

// DrinksReceived bebidas recibidas en el día.
func (r *PurchaseRepo) DrinksReceived(_ context.Context, shiftDay string) (decimal.Decimal, error) {
	return r.get("purchases:drinks", r.s.drinks, shiftDay)
}

func (r *PurchaseRepo) get(op string, m map[string]decimal.Decimal, shiftDay string) (decimal.Decimal, error) {
	if err := r.s.check(op, shiftDay); err != nil {
		return decimal.Zero, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return m[shiftDay], nil
}

// DeclarationRepo declaraciones del personal en memoria.
type DeclarationRepo struct{ s *Store }

// GetByShiftDay declaración del día; (nil, nil) si no hay.
func (r *DeclarationRepo) GetByShiftDay(_ context.Context, shiftDay string) (*entity.DeclaredShift, error) {
	if err := r.s.check("declarations:get", shiftDay); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.declarations[shiftDay]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// RecipeRepo porciones en memoria.
type RecipeRepo struct{ s *Store }

// PortionsByProductCodes porciones de los códigos pedidos que tienen receta.
func (r *RecipeRepo) PortionsByProductCodes(_ context.Context, codes []string) (map[string][]entity.RecipePortion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string][]entity.RecipePortion)
	for _, c := range codes {
		if p, ok := r.s.portions[c]; ok {
			out[c] = append([]entity.RecipePortion(nil), p...)
		}
	}
	return out, nil
}

// StockSnapshotRepo stock vivo en memoria.
type StockSnapshotRepo struct{ s *Store }

// ListByIngredientIDs stock de los ingredientes pedidos que existen.
func (r *StockSnapshotRepo) ListByIngredientIDs(_ context.Context, ids []string) (map[string]*entity.StockSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.StockSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := r.s.stock[id]; ok {
			cp := *snap
			out[id] = &cp
		}
	}
	return out, nil
}

// ConsumptionEventRepo bitácora de consumo en memoria.
type ConsumptionEventRepo struct{ s *Store }

// ListByWindow eventos con OccurredAt en [from, to).
func (r *ConsumptionEventRepo) ListByWindow(_ context.Context, from, to time.Time) ([]*entity.ConsumptionEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ConsumptionEvent
	for _, e := range r.s.events {
		if !e.OccurredAt.Before(from) && e.OccurredAt.Before(to) {
			cp := *e
			if cp.Name == "" {
				if snap, ok := r.s.stock[e.IngredientID]; ok {
					cp.Name = snap.Name
				} else {
					cp.Name = e.IngredientID
				}
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ShiftRunRepo estado del pipeline en memoria.
type ShiftRunRepo struct{ s *Store }

// Record guarda el último resultado de (día, paso).
func (r *ShiftRunRepo) Record(_ context.Context, run *entity.ShiftRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *run
	r.s.runs[run.ShiftDay+"|"+run.Step] = &cp
	return nil
}

// ListByShiftDay pasos registrados para el día ordenados por nombre.
func (r *ShiftRunRepo) ListByShiftDay(_ context.Context, shiftDay string) ([]*entity.ShiftRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ShiftRun
	for _, k := range sortedKeys(r.s.runs) {
		if run := r.s.runs[k]; run.ShiftDay == shiftDay {
			cp := *run
			out = append(out, &cp)
		}
	}
	return out, nil
}
