package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shift-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Shift.UTCOffsetHours)
	assert.Equal(t, 3, cfg.Shift.CutoffHour)
	assert.Equal(t, "100", cfg.Reconciliation.WarningAbove.String())
	assert.Equal(t, "500", cfg.Reconciliation.FailAbove.String())
	assert.Equal(t, "10", cfg.Variance.GreenMax.String())
	assert.Equal(t, "30", cfg.Variance.YellowMax.String())
	assert.Equal(t, "none", cfg.Ledger.DiscountPolicy)
	assert.Equal(t, 1, cfg.Scheduler.MaxConcurrentDays)
}

func TestLoad_SobrescribeDesdeEntorno(t *testing.T) {
	t.Setenv("RECONCILIATION_WARNING_ABOVE", "50.5")
	t.Setenv("RECONCILIATION_FAIL_ABOVE", "200")
	t.Setenv("SHIFT_CUTOFF_HOUR", "4")
	t.Setenv("POS_TIMEOUT", "5s")
	t.Setenv("REDIS_PASSWORD", "s3creta")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "50.5", cfg.Reconciliation.WarningAbove.String())
	assert.Equal(t, "200", cfg.Reconciliation.FailAbove.String())
	assert.Equal(t, 4, cfg.Shift.CutoffHour)
	assert.Equal(t, 5*time.Second, cfg.POS.Timeout)
	assert.Equal(t, "s3creta", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_UmbralesInvertidosSonError(t *testing.T) {
	t.Setenv("RECONCILIATION_WARNING_ABOVE", "600")
	t.Setenv("RECONCILIATION_FAIL_ABOVE", "500")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/x?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", c.ConnectionString())
}
