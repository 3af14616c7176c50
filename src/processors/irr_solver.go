package processors

import (
	"math"

	"github.com/username/dealsync/src/models"
)

// irrSolverImpl finds an IRR with Newton-Raphson seeded near a typical
// underwriting rate, falling back to bisection over a coarse NPV scan when
// Newton misbehaves. NPV(r) has a pole at r = -1, and Newton can step across
// it or diverge on vectors with several sign changes; the bracketing fallback
// keeps the search inside r > -1.
type irrSolverImpl struct {
	initialGuess  float64
	tolerance     float64
	maxIterations int

	// Scan range for the bracketing fallback.
	scanLow  float64
	scanHigh float64
	scanStep float64
}

func NewIRRSolver() IRRSolver {
	return &irrSolverImpl{
		initialGuess:  0.10, // 10%, the only root with underwriting meaning is near here
		tolerance:     1e-7,
		maxIterations: 100,
		scanLow:       -0.99,
		scanHigh:      10.0,
		scanStep:      0.01,
	}
}

// Solve returns the decimal rate r > -1 with NPV(r) = 0, or absent when no
// such rate exists or the search does not converge. A stream whose entries
// all share one sign has no finite IRR by Descartes' rule, so the solver
// answers absent without iterating.
func (s *irrSolverImpl) Solve(flows models.CashflowVector) models.Metric {
	if !hasSignChange(flows) {
		return models.Metric{}
	}

	r := s.initialGuess
	for i := 0; i < s.maxIterations; i++ {
		v := npv(flows, r)
		if math.Abs(v) < s.tolerance {
			return models.MetricOf(r)
		}
		d := npvDerivative(flows, r)
		if math.Abs(d) < 1e-12 {
			// Flat spot: Newton would blow up.
			return s.bisect(flows)
		}
		next := r - v/d
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1+1e-6 {
			// Stepped towards or across the pole.
			return s.bisect(flows)
		}
		r = next
	}
	if math.Abs(npv(flows, r)) < s.tolerance {
		return models.MetricOf(r)
	}
	return s.bisect(flows)
}

// bisect samples NPV over the scan range, takes the first bracket with a sign
// change, and bisects it. Absent when no bracket exists or the bracket does
// not tighten to tolerance.
func (s *irrSolverImpl) bisect(flows models.CashflowVector) models.Metric {
	lo, hi, ok := s.findBracket(flows)
	if !ok {
		return models.Metric{}
	}
	flo := npv(flows, lo)
	for i := 0; i < s.maxIterations; i++ {
		mid := (lo + hi) / 2
		fmid := npv(flows, mid)
		if math.Abs(fmid) < s.tolerance {
			return models.MetricOf(mid)
		}
		if (flo < 0) == (fmid < 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	mid := (lo + hi) / 2
	if math.Abs(npv(flows, mid)) < s.tolerance {
		return models.MetricOf(mid)
	}
	return models.Metric{}
}

func (s *irrSolverImpl) findBracket(flows models.CashflowVector) (float64, float64, bool) {
	prev := s.scanLow
	fprev := npv(flows, prev)
	for r := s.scanLow + s.scanStep; r <= s.scanHigh; r += s.scanStep {
		f := npv(flows, r)
		if fprev == 0 {
			return prev, prev, true
		}
		if (fprev < 0) != (f < 0) {
			return prev, r, true
		}
		prev, fprev = r, f
	}
	return 0, 0, false
}

// npv discounts the stream at rate r: sum of flows[t] / (1+r)^t.
func npv(flows models.CashflowVector, r float64) float64 {
	total := 0.0
	for t, cf := range flows {
		total += cf / math.Pow(1+r, float64(t))
	}
	return total
}

// npvDerivative is d/dr of npv: sum of -t * flows[t] / (1+r)^(t+1).
func npvDerivative(flows models.CashflowVector, r float64) float64 {
	total := 0.0
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		total -= float64(t) * cf / math.Pow(1+r, float64(t+1))
	}
	return total
}

// hasSignChange reports whether the stream contains both an inflow and an
// outflow, ignoring zero entries.
func hasSignChange(flows models.CashflowVector) bool {
	sign := 0
	for _, cf := range flows {
		switch {
		case cf > 0:
			if sign < 0 {
				return true
			}
			sign = 1
		case cf < 0:
			if sign > 0 {
				return true
			}
			sign = -1
		}
	}
	return false
}
