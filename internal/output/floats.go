package output

import (
	"math"
	"strconv"
	"strings"
)

// RoundFloat rounds to 6 decimal places
func RoundFloat(f float64) float64 {
	const multiplier = 1e6
	return math.Round(f*multiplier) / multiplier
}

// FormatFloat formats f with at most places decimals and no trailing zeros.
func FormatFloat(f float64, places int) string {
	str := strconv.FormatFloat(f, 'f', places, 64)
	if !strings.Contains(str, ".") {
		return str
	}
	str = strings.TrimRight(str, "0")
	return strings.TrimSuffix(str, ".")
}
