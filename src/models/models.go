package models

import (
	"encoding/json"
	"time"
)

// ColumnValue is a single field entry on a board item. Text carries the
// human-readable representation; Value carries the column's raw JSON payload
// when the store provides one.
type ColumnValue struct {
	ID    string          `json:"id"`
	Text  string          `json:"text"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Item represents one record fetched from the board.
type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ColumnValues []ColumnValue `json:"column_values"`
}

// ColumnByID returns the column value with the given ID, if present.
func (i Item) ColumnByID(id string) (ColumnValue, bool) {
	for _, cv := range i.ColumnValues {
		if cv.ID == id {
			return cv, true
		}
	}
	return ColumnValue{}, false
}

// RawInputs holds the per-item underwriting inputs extracted from the board.
// Missing or unparseable columns read as 0. EquityInvestment is stored as a
// magnitude; the cash-flow builder reapplies the sign.
type RawInputs struct {
	EquityInvestment   float64
	NetOperatingIncome float64
	TotalProjectCost   float64
	LoanAmount         float64
	MarketCapRate      float64
	ExitCapRate        float64
	YearCashFlows      [5]float64
	SaleProceeds       float64
}

// CashflowVector is the ordered signed cash-flow stream for one deal:
// index 0 is the period-0 outflow, followed by one entry per period.
type CashflowVector []float64

// Metric is an optional metric value. The zero value means absent: the
// metric's preconditions were not met, which is distinct from a computed 0.
type Metric struct {
	Value float64
	Valid bool
}

// MetricOf returns a present Metric.
func MetricOf(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// MarshalJSON encodes an absent metric as null so report consumers can tell
// "no value" apart from 0.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MetricOf(v)
	return nil
}

// Metric names, as used in MetricResult and the field map.
const (
	MetricCapRate        = "cap_rate"
	MetricLTV            = "ltv"
	MetricYieldOnCost    = "yield_on_cost"
	MetricSpread         = "spread"
	MetricReversionValue = "reversion_value"
	MetricCashOnCash     = "cash_on_cash"
	MetricIRR            = "irr"
	MetricEquityMultiple = "equity_multiple"
)

// MetricNames lists every computed metric in output order.
var MetricNames = []string{
	MetricCapRate,
	MetricLTV,
	MetricYieldOnCost,
	MetricSpread,
	MetricReversionValue,
	MetricCashOnCash,
	MetricIRR,
	MetricEquityMultiple,
}

// MetricResult maps metric name to its (possibly absent) value.
type MetricResult map[string]Metric

// Sync outcome statuses.
const (
	StatusUpdated = "updated"
	StatusSkipped = "skipped" // dry-run: write computed but not issued
	StatusFailed  = "failed"
)

// SyncOutcome is the per-item result of one sync pass.
type SyncOutcome struct {
	ItemID       string                     `json:"item_id"`
	ItemName     string                     `json:"item_name"`
	Status       string                     `json:"status"`
	Reason       string                     `json:"reason,omitempty"`
	Metrics      MetricResult               `json:"metrics,omitempty"`
	ColumnValues map[string]json.RawMessage `json:"column_values,omitempty"`
}

// Sync run statuses.
const (
	RunCompleted = "completed"
	RunNoRecords = "no-records"
)

// SyncReport aggregates the outcomes of one sync run.
type SyncReport struct {
	RunID      string        `json:"run_id"`
	BoardID    string        `json:"board_id"`
	DryRun     bool          `json:"dry_run"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcomes   []SyncOutcome `json:"outcomes"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
}
