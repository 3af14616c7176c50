package models

import "fmt"

// FieldMap carries the board-specific column IDs for every logical input and
// output field. Column IDs differ per board, so the mapping is configuration,
// never a constant.
type FieldMap struct {
	// Inputs
	EquityInvestment   string `json:"equity_investment"`
	NetOperatingIncome string `json:"net_operating_income"`
	TotalProjectCost   string `json:"total_project_cost"`
	LoanAmount         string `json:"loan_amount"`
	MarketCapRate      string `json:"market_cap_rate"`
	ExitCapRate        string `json:"exit_cap_rate"`
	Year1CF            string `json:"year_1_cf"`
	Year2CF            string `json:"year_2_cf"`
	Year3CF            string `json:"year_3_cf"`
	Year4CF            string `json:"year_4_cf"`
	Year5CF            string `json:"year_5_cf"`
	SaleProceeds       string `json:"sale_proceeds"`

	// Outputs, keyed by metric name in OutputColumns.
	CapRate        string `json:"cap_rate"`
	LTV            string `json:"ltv"`
	YieldOnCost    string `json:"yield_on_cost"`
	Spread         string `json:"spread"`
	ReversionValue string `json:"reversion_value"`
	CashOnCash     string `json:"cash_on_cash"`
	IRR            string `json:"irr"`
	EquityMultiple string `json:"equity_multiple"`
}

// YearColumns returns the five period cash-flow column IDs in order.
func (f FieldMap) YearColumns() [5]string {
	return [5]string{f.Year1CF, f.Year2CF, f.Year3CF, f.Year4CF, f.Year5CF}
}

// OutputColumns maps metric name to the column it is written to. Metrics with
// no configured column are omitted from the write entirely.
func (f FieldMap) OutputColumns() map[string]string {
	out := map[string]string{
		MetricCapRate:        f.CapRate,
		MetricLTV:            f.LTV,
		MetricYieldOnCost:    f.YieldOnCost,
		MetricSpread:         f.Spread,
		MetricReversionValue: f.ReversionValue,
		MetricCashOnCash:     f.CashOnCash,
		MetricIRR:            f.IRR,
		MetricEquityMultiple: f.EquityMultiple,
	}
	for name, col := range out {
		if col == "" {
			delete(out, name)
		}
	}
	return out
}

// Validate reports the first missing mapping needed to run a sync. Inputs may
// legitimately be unmapped (they read as 0), but at least one output column
// must exist or the run would write nothing.
func (f FieldMap) Validate() error {
	if len(f.OutputColumns()) == 0 {
		return fmt.Errorf("field map defines no output columns")
	}
	return nil
}
