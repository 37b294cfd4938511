package reconciliation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/reconciliation"
)

func TestClassify_Fronteras(t *testing.T) {
	th := reconciliation.DefaultThresholds()

	cases := []struct {
		variance string
		want     string
	}{
		{"0", entity.ReconciliationOK},
		{"100", entity.ReconciliationOK},
		{"-100", entity.ReconciliationOK},
		{"100.01", entity.ReconciliationWarning},
		{"-250", entity.ReconciliationWarning},
		{"500", entity.ReconciliationWarning},
		{"500.01", entity.ReconciliationFail},
		{"-3000", entity.ReconciliationFail},
	}
	for _, tc := range cases {
		t.Run(tc.variance, func(t *testing.T) {
			assert.Equal(t, tc.want, th.Classify(decimal.RequireFromString(tc.variance)))
		})
	}
}

func TestClassify_UmbralesPersonalizados(t *testing.T) {
	th := reconciliation.Thresholds{WarningAbove: decimal.NewFromInt(10), FailAbove: decimal.NewFromInt(20)}
	assert.Equal(t, entity.ReconciliationWarning, th.Classify(decimal.NewFromInt(15)))
	assert.Equal(t, entity.ReconciliationFail, th.Classify(decimal.NewFromInt(21)))
}
