package backfill

import (
	"context"
	"sync"

	"github.com/jhoicas/shift-ledger/internal/application/ports"
)

var _ ports.DayLocker = (*LocalDayLocker)(nil)

// LocalDayLocker mutex por día dentro del proceso. Respeta la cancelación del contexto
// mientras espera. El slot de un día se elimina cuando nadie lo retiene ni lo espera.
type LocalDayLocker struct {
	mu    sync.Mutex
	slots map[string]*daySlot
}

type daySlot struct {
	ch   chan struct{}
	refs int // dueño actual más los que esperan
}

// NewLocalDayLocker crea el locker.
func NewLocalDayLocker() *LocalDayLocker {
	return &LocalDayLocker{slots: make(map[string]*daySlot)}
}

// Lock bloquea el día hasta obtenerlo o hasta que ctx termine.
func (l *LocalDayLocker) Lock(ctx context.Context, shiftDay string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[shiftDay]
	if !ok {
		slot = &daySlot{ch: make(chan struct{}, 1)}
		l.slots[shiftDay] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(shiftDay, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(shiftDay, slot)
		return nil, ctx.Err()
	}
}

func (l *LocalDayLocker) release(shiftDay string, slot *daySlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, shiftDay)
	}
}
