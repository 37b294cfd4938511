// Package redis provee el bloqueo distribuido por día de turno sobre Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shift-ledger/internal/application/ports"
	"github.com/jhoicas/shift-ledger/internal/domain"
	"github.com/jhoicas/shift-ledger/pkg/config"
)

var _ ports.DayLocker = (*DayLocker)(nil)

const keyPrefix = "shift-ledger:day:"

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// DayLocker lock de Redis por día de turno. Si Redis falla (no si el lock está tomado)
// recurre al locker de respaldo: el advisory lock de Postgres sigue serializando las escrituras.
type DayLocker struct {
	locker   *redislock.Client
	ttl      time.Duration
	wait     time.Duration
	fallback ports.DayLocker
	log      zerolog.Logger
}

// NewDayLocker construye el locker. wait es cuánto esperar a que otro proceso libere el día.
func NewDayLocker(rdb goredis.UniversalClient, ttl, wait time.Duration, fallback ports.DayLocker, log zerolog.Logger) *DayLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &DayLocker{
		locker:   redislock.New(rdb),
		ttl:      ttl,
		wait:     wait,
		fallback: fallback,
		log:      log,
	}
}

// Lock obtiene el lock del día y lo renueva cada ttl/2 hasta liberarlo, así un día con una
// sincronización POS larga no lo pierde. Devuelve domain.ErrShiftBusy si otro proceso lo
// retiene más allá de la espera configurada.
func (l *DayLocker) Lock(ctx context.Context, shiftDay string) (func(), error) {
	backoff := 250 * time.Millisecond
	retries := int(l.wait / backoff)
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(backoff), retries),
	}
	lock, err := l.locker.Obtain(ctx, keyPrefix+shiftDay, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.NewShiftError(domain.ErrShiftBusy, shiftDay, "lock", nil)
	}
	if err != nil {
		l.log.Warn().Err(err).Str("shift_day", shiftDay).Msg("redis no disponible; usando lock local")
		if l.fallback == nil {
			return func() {}, nil
		}
		return l.fallback.Lock(ctx, shiftDay)
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lock, shiftDay, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// El ctx del llamador puede estar cancelado; liberar igual.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.Warn().Err(err).Str("shift_day", shiftDay).Msg("no se pudo liberar el lock de redis")
			}
		})
	}, nil
}

// keepAlive renueva el TTL del lock hasta que se cierre stop. Si una renovación falla el
// lock se da por perdido; las escrituras siguen protegidas por el advisory lock de Postgres.
func (l *DayLocker) keepAlive(lock *redislock.Lock, shiftDay string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			err := lock.Refresh(ctx, l.ttl, nil)
			cancel()
			if err != nil {
				l.log.Warn().Err(err).Str("shift_day", shiftDay).Msg("no se pudo renovar el lock de redis")
				return
			}
		}
	}
}
