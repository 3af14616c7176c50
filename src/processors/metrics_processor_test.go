package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/dealsync/src/models"
)

func newTestMetricsProcessor() MetricsProcessor {
	return NewMetricsProcessor(NewCashflowBuilder(), NewIRRSolver())
}

func TestComputeFullInputs(t *testing.T) {
	m := newTestMetricsProcessor()

	in := models.RawInputs{
		EquityInvestment:   100,
		NetOperatingIncome: 120,
		TotalProjectCost:   2000,
		LoanAmount:         1400,
		MarketCapRate:      5.5,
		ExitCapRate:        6,
		YearCashFlows:      [5]float64{10, 10, 10, 10, 10},
		SaleProceeds:       100,
	}

	result := m.Compute(in)

	capRate := result[models.MetricCapRate]
	require.True(t, capRate.Valid)
	assert.InDelta(t, 6.0, capRate.Value, 1e-9) // 120/2000*100

	ltv := result[models.MetricLTV]
	require.True(t, ltv.Valid)
	assert.InDelta(t, 70.0, ltv.Value, 1e-9) // 1400/2000*100

	yoc := result[models.MetricYieldOnCost]
	require.True(t, yoc.Valid)
	assert.InDelta(t, 6.0, yoc.Value, 1e-9)

	spread := result[models.MetricSpread]
	require.True(t, spread.Valid)
	assert.InDelta(t, 0.5, spread.Value, 1e-9) // 6.0 - 5.5

	reversion := result[models.MetricReversionValue]
	require.True(t, reversion.Valid)
	assert.InDelta(t, 2000.0, reversion.Value, 1e-9) // 120/(6/100)

	coc := result[models.MetricCashOnCash]
	require.True(t, coc.Valid)
	assert.InDelta(t, 10.0, coc.Value, 1e-9) // 10/100*100

	irr := result[models.MetricIRR]
	require.True(t, irr.Valid)
	// Flows are [-100,10,10,10,10,110]: the rate is 10%, presented as a
	// percentage.
	assert.InDelta(t, 10.0, irr.Value, 1e-4)

	em := result[models.MetricEquityMultiple]
	require.True(t, em.Valid)
	assert.InDelta(t, 1.50, em.Value, 1e-9) // (10*4 + 10+100)/100
}

func TestComputeZeroProjectCost(t *testing.T) {
	m := newTestMetricsProcessor()

	in := models.RawInputs{
		EquityInvestment:   100,
		NetOperatingIncome: 120,
		TotalProjectCost:   0,
		LoanAmount:         1400,
		MarketCapRate:      5.5,
		YearCashFlows:      [5]float64{10, 10, 10, 10, 10},
	}

	result := m.Compute(in)

	assert.False(t, result[models.MetricCapRate].Valid)
	assert.False(t, result[models.MetricLTV].Valid)
	assert.False(t, result[models.MetricYieldOnCost].Valid)
	// Spread needs yield on cost, so it is absent too.
	assert.False(t, result[models.MetricSpread].Valid)
	// Equity-based metrics are unaffected.
	assert.True(t, result[models.MetricCashOnCash].Valid)
	assert.True(t, result[models.MetricEquityMultiple].Valid)
}

func TestComputeEquityMultiple(t *testing.T) {
	m := newTestMetricsProcessor()

	in := models.RawInputs{
		EquityInvestment: 100,
		YearCashFlows:    [5]float64{10, 10, 10, 10, 10},
		SaleProceeds:     100,
	}

	// Vector [-100,10,10,10,10,110]: 140 returned on 100 invested.
	em := m.Compute(in)[models.MetricEquityMultiple]
	require.True(t, em.Valid)
	assert.InDelta(t, 1.40, em.Value, 1e-9)
}

func TestComputeZeroEquity(t *testing.T) {
	m := newTestMetricsProcessor()

	in := models.RawInputs{
		NetOperatingIncome: 120,
		TotalProjectCost:   2000,
		YearCashFlows:      [5]float64{10, 10, 10, 10, 10},
	}

	result := m.Compute(in)

	assert.False(t, result[models.MetricCashOnCash].Valid)
	assert.False(t, result[models.MetricEquityMultiple].Valid)
	// With no outflow the cash-flow vector has no sign change, so no IRR.
	assert.False(t, result[models.MetricIRR].Valid)
	// Cost-based metrics still compute.
	assert.True(t, result[models.MetricCapRate].Valid)
}

func TestComputeSpreadNeedsMarketCapRate(t *testing.T) {
	m := newTestMetricsProcessor()

	in := models.RawInputs{
		NetOperatingIncome: 120,
		TotalProjectCost:   2000,
		MarketCapRate:      0,
	}

	result := m.Compute(in)

	assert.True(t, result[models.MetricYieldOnCost].Valid)
	assert.False(t, result[models.MetricSpread].Valid)
}

func TestComputeIsPure(t *testing.T) {
	m := newTestMetricsProcessor()

	in := models.RawInputs{
		EquityInvestment:   100,
		NetOperatingIncome: 120,
		TotalProjectCost:   2000,
		YearCashFlows:      [5]float64{10, 10, 10, 10, 10},
		SaleProceeds:       100,
	}

	first := m.Compute(in)
	second := m.Compute(in)

	assert.Equal(t, first, second)
}
