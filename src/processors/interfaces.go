package processors

import (
	"github.com/username/dealsync/src/models"
)

// CashflowBuilder assembles the signed cash-flow vector for one deal from its
// extracted inputs.
type CashflowBuilder interface {
	Build(in models.RawInputs) models.CashflowVector
}

// IRRSolver finds the per-period rate that zeroes the net present value of a
// cash-flow vector. The result is a decimal rate (0.10 = 10%), absent when no
// finite root exists in the economically meaningful domain.
type IRRSolver interface {
	Solve(flows models.CashflowVector) models.Metric
}

// MetricsProcessor computes the full underwriting metric set for one deal.
type MetricsProcessor interface {
	Compute(in models.RawInputs) models.MetricResult
}
