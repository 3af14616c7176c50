package parsers

import (
	"math"

	"github.com/username/dealsync/src/models"
)

// InputParser extracts the underwriting inputs from a board item using the
// configured column mapping.
type InputParser struct {
	fieldMap models.FieldMap
}

func NewInputParser(fieldMap models.FieldMap) *InputParser {
	return &InputParser{fieldMap: fieldMap}
}

// Extract reads every mapped input column off the item. Unmapped or missing
// columns read as 0.0. Equity investment is normalized to a magnitude; the
// outflow sign is reapplied by the cash-flow builder.
func (p *InputParser) Extract(item models.Item) models.RawInputs {
	in := models.RawInputs{
		EquityInvestment:   math.Abs(p.number(item, p.fieldMap.EquityInvestment)),
		NetOperatingIncome: p.number(item, p.fieldMap.NetOperatingIncome),
		TotalProjectCost:   p.number(item, p.fieldMap.TotalProjectCost),
		LoanAmount:         p.number(item, p.fieldMap.LoanAmount),
		MarketCapRate:      p.number(item, p.fieldMap.MarketCapRate),
		ExitCapRate:        p.number(item, p.fieldMap.ExitCapRate),
		SaleProceeds:       p.number(item, p.fieldMap.SaleProceeds),
	}
	for i, col := range p.fieldMap.YearColumns() {
		in.YearCashFlows[i] = p.number(item, col)
	}
	return in
}

func (p *InputParser) number(item models.Item, columnID string) float64 {
	if columnID == "" {
		return 0.0
	}
	cv, ok := item.ColumnByID(columnID)
	if !ok {
		return 0.0
	}
	return ParseNumber(cv)
}
