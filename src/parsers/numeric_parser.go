package parsers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/username/dealsync/src/models"
)

// ParseText converts a human-entered numeric string to a float64. Empty or
// malformed input degrades to 0.0; this function never fails, so one bad cell
// cannot abort a batch.
func ParseText(text string) float64 {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// ParseNumber converts a column value to a float64, preferring the column's
// canonical JSON payload over its display text. Number columns serialize the
// payload either as a bare number or as a quoted numeric string; both decode
// here. When no payload decodes, the display text is parsed as a fallback.
func ParseNumber(cv models.ColumnValue) float64 {
	if len(cv.Value) > 0 {
		var num float64
		if err := json.Unmarshal(cv.Value, &num); err == nil {
			return num
		}
		var quoted string
		if err := json.Unmarshal(cv.Value, &quoted); err == nil {
			quoted = strings.TrimSpace(strings.ReplaceAll(quoted, ",", ""))
			if v, err := strconv.ParseFloat(quoted, 64); err == nil {
				return v
			}
		}
	}
	return ParseText(cv.Text)
}
