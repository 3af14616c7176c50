package utils

import (
	"math"
	"strconv"
)

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FormatAmount renders a metric value with two decimal places, the fixed
// presentation format for every board column this tool writes.
func FormatAmount(val float64) string {
	return strconv.FormatFloat(val, 'f', 2, 64)
}
