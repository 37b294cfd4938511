package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/internal/domain"
)

type countingLocker struct {
	locks   []string
	unlocks int
}

func (c *countingLocker) Lock(_ context.Context, shiftDay string) (func(), error) {
	c.locks = append(c.locks, shiftDay)
	return func() { c.unlocks++ }, nil
}

func TestDayLocker_RedisCaidoUsaRespaldo(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	fallback := &countingLocker{}
	l := NewDayLocker(rdb, time.Minute, time.Second, fallback, zerolog.Nop())

	unlock, err := l.Lock(context.Background(), "2025-10-18")
	require.NoError(t, err)
	unlock()

	assert.Equal(t, []string{"2025-10-18"}, fallback.locks)
	assert.Equal(t, 1, fallback.unlocks)
}

func TestDayLocker_SinRespaldoContinua(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	l := NewDayLocker(rdb, time.Minute, time.Second, nil, zerolog.Nop())
	unlock, err := l.Lock(context.Background(), "2025-10-18")
	require.NoError(t, err)
	assert.NotPanics(t, unlock)
}

func TestDayLocker_RenuevaElTTLMientrasSeRetiene(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	l := NewDayLocker(rdb, 200*time.Millisecond, 0, nil, zerolog.Nop())
	key := keyPrefix + "2025-10-18"

	unlock, err := l.Lock(ctx, "2025-10-18")
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	mr.FastForward(150 * time.Millisecond)
	require.Eventually(t, func() bool { return mr.TTL(key) > 100*time.Millisecond }, time.Second, 10*time.Millisecond)

	_, err = l.Lock(ctx, "2025-10-18")
	assert.ErrorIs(t, err, domain.ErrShiftBusy)

	unlock()
	assert.False(t, mr.Exists(key))
	assert.NotPanics(t, unlock)
}

func TestDayLocker_LockPerdidoSeLiberaSinError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	l := NewDayLocker(rdb, 200*time.Millisecond, 0, nil, zerolog.Nop())

	unlock, err := l.Lock(context.Background(), "2025-10-18")
	require.NoError(t, err)
	mr.FastForward(time.Second)
	assert.False(t, mr.Exists(keyPrefix+"2025-10-18"))
	assert.NotPanics(t, unlock)
}
