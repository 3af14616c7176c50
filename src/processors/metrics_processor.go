package processors

import (
	"math"

	"github.com/username/dealsync/src/models"
)

// metricsProcessorImpl computes the underwriting metric set for one deal.
// Pure computation over RawInputs; no I/O. A metric whose precondition fails
// (zero denominator, no IRR root) stays absent rather than defaulting to 0.
type metricsProcessorImpl struct {
	builder CashflowBuilder
	solver  IRRSolver
}

func NewMetricsProcessor(builder CashflowBuilder, solver IRRSolver) MetricsProcessor {
	return &metricsProcessorImpl{
		builder: builder,
		solver:  solver,
	}
}

// Compute evaluates every metric. Rate metrics (cap rate, LTV, yield on cost,
// cash-on-cash, IRR) are expressed as percentages; reversion value is a
// monetary amount and equity multiple a plain ratio. Full float precision is
// kept here; rounding happens only when values are formatted for the board.
func (m *metricsProcessorImpl) Compute(in models.RawInputs) models.MetricResult {
	result := make(models.MetricResult, len(models.MetricNames))
	for _, name := range models.MetricNames {
		result[name] = models.Metric{}
	}

	if in.TotalProjectCost > 0 {
		yieldOnCost := in.NetOperatingIncome / in.TotalProjectCost * 100
		result[models.MetricCapRate] = models.MetricOf(in.NetOperatingIncome / in.TotalProjectCost * 100)
		result[models.MetricLTV] = models.MetricOf(in.LoanAmount / in.TotalProjectCost * 100)
		result[models.MetricYieldOnCost] = models.MetricOf(yieldOnCost)
		if in.MarketCapRate > 0 {
			// Spread uses the unrounded yield on cost.
			result[models.MetricSpread] = models.MetricOf(yieldOnCost - in.MarketCapRate)
		}
	}

	if in.ExitCapRate > 0 {
		result[models.MetricReversionValue] = models.MetricOf(in.NetOperatingIncome / (in.ExitCapRate / 100))
	}

	equity := math.Abs(in.EquityInvestment)
	if equity > 0 {
		result[models.MetricCashOnCash] = models.MetricOf(in.YearCashFlows[0] / equity * 100)
	}

	flows := m.builder.Build(in)
	if irr := m.solver.Solve(flows); irr.Valid {
		result[models.MetricIRR] = models.MetricOf(irr.Value * 100)
	}
	if equity > 0 {
		totalReturned := 0.0
		for _, cf := range flows[1:] {
			totalReturned += cf
		}
		result[models.MetricEquityMultiple] = models.MetricOf(totalReturned / equity)
	}

	return result
}
