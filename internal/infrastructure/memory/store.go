// Package memory implementa los puertos de persistencia en memoria, con transacciones
// todo-o-nada por día e inyección de fallos. Lo usan los tests de los casos de uso.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// FailFunc permite inyectar fallos: op es el nombre de la operación (ej. "purchases:rolls")
// y key la clave afectada (normalmente el día). Devolver nil deja pasar la llamada.
type FailFunc func(op, key string) error

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	receipts     map[string]*entity.RawReceipt
	soldItems    map[string][]*entity.SoldItem
	ledgers      map[string][]*entity.LedgerEntry
	baselines    map[string]*entity.BaselineConfirmation
	recs         map[string][]*entity.ReconciliationRecord
	audits       []*entity.IngestionAuditRecord
	runs         map[string]*entity.ShiftRun
	declarations map[string]*entity.DeclaredShift
	portions     map[string][]entity.RecipePortion
	stock        map[string]*entity.StockSnapshot
	events       []*entity.ConsumptionEvent
	rolls        map[string]decimal.Decimal
	meat         map[string]decimal.Decimal
	drinks       map[string]decimal.Decimal

	fail FailFunc
	now  func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		receipts:     make(map[string]*entity.RawReceipt),
		soldItems:    make(map[string][]*entity.SoldItem),
		ledgers:      make(map[string][]*entity.LedgerEntry),
		baselines:    make(map[string]*entity.BaselineConfirmation),
		recs:         make(map[string][]*entity.ReconciliationRecord),
		runs:         make(map[string]*entity.ShiftRun),
		declarations: make(map[string]*entity.DeclaredShift),
		portions:     make(map[string][]entity.RecipePortion),
		stock:        make(map[string]*entity.StockSnapshot),
		rolls:        make(map[string]decimal.Decimal),
		meat:         make(map[string]decimal.Decimal),
		drinks:       make(map[string]decimal.Decimal),
		now:          time.Now,
	}
}

// SetFail instala la función de inyección de fallos.
func (s *Store) SetFail(f FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = f
}

func (s *Store) check(op, key string) error {
	s.mu.Lock()
	f := s.fail
	s.mu.Unlock()
	if f == nil {
		return nil
	}
	return f(op, key)
}

func ledgerKey(kind entity.LedgerKind, day string) string { return string(kind) + "|" + day }

// ── Datos de colaboradores externos (solo para preparar escenarios) ─────────────

// PutDeclaration registra la declaración del personal para un día.
func (s *Store) PutDeclaration(d *entity.DeclaredShift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declarations[d.ShiftDay] = d
}

// PutPortions registra las porciones de un producto.
func (s *Store) PutPortions(code string, portions ...entity.RecipePortion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portions[code] = append(s.portions[code], portions...)
}

// PutPurchase registra reposición del día para un tipo de libro.
func (s *Store) PutPurchase(kind entity.LedgerKind, day string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case entity.LedgerRolls:
		s.rolls[day] = s.rolls[day].Add(qty)
	case entity.LedgerMeat:
		s.meat[day] = s.meat[day].Add(qty)
	case entity.LedgerDrinks:
		s.drinks[day] = s.drinks[day].Add(qty)
	}
}

// PutStock registra el stock vivo de un ingrediente.
func (s *Store) PutStock(snap *entity.StockSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[snap.IngredientID] = snap
}

// PutConsumptionEvent agrega un evento a la bitácora de consumo.
func (s *Store) PutConsumptionEvent(e *entity.ConsumptionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// InjectLedgerDuplicate agrega una fila extra para (kind, día), simulando un camino de escritura roto.
func (s *Store) InjectLedgerDuplicate(e *entity.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := ledgerKey(e.Kind, e.ShiftDay)
	s.ledgers[k] = append(s.ledgers[k], e)
}

// Receipts cantidad de recibos registrados.
func (s *Store) Receipts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts)
}

// Audits copia de la bitácora de ingesta.
func (s *Store) Audits() []*entity.IngestionAuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.IngestionAuditRecord(nil), s.audits...)
}

// ── Transacciones ─────────────────────────────────────────────────────────────

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y aplica los cambios solo si fn no falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

// RunShift ejecuta fn sobre una copia de las tablas derivadas y la publica al terminar sin error.
func (r *TxRunner) RunShift(ctx context.Context, scope, shiftDay string, fn func(repos ports.ShiftRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := r.s.check("tx:"+scope, shiftDay); err != nil {
		return err
	}

	stage := r.s.cloneDerived()
	repos := ports.ShiftRepos{
		SoldItems:       &SoldItemRepo{s: stage},
		Ledgers:         &LedgerRepo{s: stage},
		Reconciliations: &ReconciliationRepo{s: stage},
	}
	if err := fn(repos); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stage.mu.Lock()
	defer stage.mu.Unlock()
	r.s.soldItems = stage.soldItems
	r.s.ledgers = stage.ledgers
	r.s.recs = stage.recs
	return nil
}

// cloneDerived copia las tablas que escriben las transacciones; comparte el resto.
func (s *Store) cloneDerived() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Store{
		soldItems: make(map[string][]*entity.SoldItem, len(s.soldItems)),
		ledgers:   make(map[string][]*entity.LedgerEntry, len(s.ledgers)),
		recs:      make(map[string][]*entity.ReconciliationRecord, len(s.recs)),
		fail:      s.fail,
		now:       s.now,
	}
	for k, v := range s.soldItems {
		c.soldItems[k] = append([]*entity.SoldItem(nil), v...)
	}
	for k, v := range s.ledgers {
		c.ledgers[k] = append([]*entity.LedgerEntry(nil), v...)
	}
	for k, v := range s.recs {
		c.recs[k] = append([]*entity.ReconciliationRecord(nil), v...)
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrInjected error de fuente externa para usar desde FailFunc.
func ErrInjected(op, key string) error {
	return fmt.Errorf("%s %s: %w", op, key, domain.ErrExternalSource)
}
