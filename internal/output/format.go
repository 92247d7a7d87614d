// Package output renders the prepared tables and writes them to storage.
package output

import (
	"math"
	"strconv"
	"strings"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
)

// FormatFloat renders v as the shortest round-tripping decimal. Integral
// values keep a trailing ".0", and very small or very large magnitudes use
// exponent notation.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatValue renders a nullable value; null is an empty cell.
func FormatValue(f model.Float) string {
	if !f.Valid {
		return ""
	}
	return FormatFloat(f.Value)
}
