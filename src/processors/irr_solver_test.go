package processors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/dealsync/src/models"
)

func TestSolveSinglePeriodExactRoot(t *testing.T) {
	solver := NewIRRSolver()

	// -100 now, 110 in one period: the analytic root is exactly 10%.
	result := solver.Solve(models.CashflowVector{-100, 110})

	require.True(t, result.Valid)
	assert.InDelta(t, 0.10, result.Value, 1e-6)
}

func TestSolveParStructure(t *testing.T) {
	solver := NewIRRSolver()

	// 10 per period on 100 invested, principal back with the last payment:
	// the rate equals the coupon.
	result := solver.Solve(models.CashflowVector{-100, 10, 10, 10, 10, 110})

	require.True(t, result.Valid)
	assert.InDelta(t, 0.10, result.Value, 1e-6)
}

func TestSolveZeroCouponStructure(t *testing.T) {
	solver := NewIRRSolver()

	// Doubling over five periods: r = 2^(1/5) - 1.
	flows := models.CashflowVector{-100, 0, 0, 0, 0, 200}
	result := solver.Solve(flows)

	require.True(t, result.Valid)
	assert.InDelta(t, math.Pow(2, 1.0/5)-1, result.Value, 1e-4)
	assert.InDelta(t, 0, npv(flows, result.Value), 1e-6)
}

func TestSolveNegativeRate(t *testing.T) {
	solver := NewIRRSolver()

	// Losing money overall still has a root, below zero but above -1.
	flows := models.CashflowVector{-100, 60, 30}
	result := solver.Solve(flows)

	require.True(t, result.Valid)
	assert.Less(t, result.Value, 0.0)
	assert.Greater(t, result.Value, -1.0)
	assert.InDelta(t, 0, npv(flows, result.Value), 1e-6)
}

func TestSolveNoSignChangeIsAbsent(t *testing.T) {
	solver := NewIRRSolver()

	tests := []struct {
		name  string
		flows models.CashflowVector
	}{
		{name: "all positive", flows: models.CashflowVector{100, 10, 10}},
		{name: "all negative", flows: models.CashflowVector{-100, -10, -10}},
		{name: "all zero", flows: models.CashflowVector{0, 0, 0, 0, 0, 0}},
		{name: "zero equity with inflows", flows: models.CashflowVector{0, 5, 5, 5, 5, 5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := solver.Solve(tc.flows)
			assert.False(t, result.Valid, "expected absent, got %v", result.Value)
		})
	}
}

func TestSolveZeroPercentRateIsPresent(t *testing.T) {
	solver := NewIRRSolver()

	// Breaking even exactly converges to 0%, which is a result, not absence.
	result := solver.Solve(models.CashflowVector{-100, 50, 50})

	require.True(t, result.Valid)
	assert.InDelta(t, 0.0, result.Value, 1e-6)
}

func TestSolveIsDeterministic(t *testing.T) {
	solver := NewIRRSolver()
	flows := models.CashflowVector{-100, 25, 25, 25, 25, 75}

	first := solver.Solve(flows)
	second := solver.Solve(flows)

	require.True(t, first.Valid)
	require.True(t, second.Valid)
	assert.InDelta(t, first.Value, second.Value, 1e-9)
}

func TestNPVDerivative(t *testing.T) {
	flows := models.CashflowVector{-100, 10, 10, 10, 10, 110}
	r := 0.07
	h := 1e-7

	numeric := (npv(flows, r+h) - npv(flows, r-h)) / (2 * h)
	analytic := npvDerivative(flows, r)

	assert.InDelta(t, numeric, analytic, 1e-3)
}
