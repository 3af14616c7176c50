package processors

import (
	"math"

	"github.com/username/dealsync/src/models"
)

type cashflowBuilderImpl struct{}

func NewCashflowBuilder() CashflowBuilder {
	return &cashflowBuilderImpl{}
}

// Build returns [-equity, y1, y2, y3, y4, y5+sale]. The equity outflow sign is
// enforced here rather than trusted from the board, so a deal entered with a
// negative equity figure still produces a period-0 outflow. No sign-pattern
// validation happens here; the solver decides whether a root exists.
func (b *cashflowBuilderImpl) Build(in models.RawInputs) models.CashflowVector {
	equity := math.Abs(in.EquityInvestment)
	flows := make(models.CashflowVector, 0, len(in.YearCashFlows)+1)
	flows = append(flows, -equity)
	for i, cf := range in.YearCashFlows {
		if i == len(in.YearCashFlows)-1 {
			cf += in.SaleProceeds
		}
		flows = append(flows, cf)
	}
	return flows
}
