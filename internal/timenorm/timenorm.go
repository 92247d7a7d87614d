// Package timenorm converts the timestamp conventions of the three sources
// into one canonical hourly timestamp. Timestamps carry no zone and are
// represented in UTC.
package timenorm

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layout is the canonical rendering of a timestamp.
const Layout = "2006-01-02 15:04:05"

// observationLayouts are tried in order.
var observationLayouts = []string{
	Layout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// NormalizeEnergyTime parses an energy reading time written in the
// hour-ending convention. The clock part is left padded to eight characters,
// "24:00:00" is read as "00:00:00" of the same date, and every resulting
// midnight is moved one day forward. A reading labelled "D 00:00:00" therefore
// also lands on D+1 00:00:00.
func NormalizeEnergyTime(raw string) (time.Time, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("energy time %q: expected \"date time\"", raw)
	}
	date, clock := fields[0], fields[1]
	if len(clock) < 8 {
		clock = strings.Repeat("0", 8-len(clock)) + clock
	}
	if clock == "24:00:00" {
		clock = "00:00:00"
	}
	t, err := time.ParseInLocation(Layout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("energy time %q: %w", raw, err)
	}
	if t.Hour() == 0 {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// NormalizeForecastTime returns the target time of a forecast: issuance plus
// horizonHours.
func NormalizeForecastTime(issuance time.Time, horizonHours float64) time.Time {
	return issuance.Add(time.Duration(math.Round(horizonHours * float64(time.Hour))))
}

// ParseForecastTime parses an issuance timestamp and applies the horizon.
func ParseForecastTime(issuance string, horizonHours float64) (time.Time, time.Time, error) {
	issued, err := ParseTimestamp(issuance)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return issued, NormalizeForecastTime(issued, horizonHours), nil
}

// NormalizeObservationTime parses an observation timestamp as is.
func NormalizeObservationTime(raw string) (time.Time, error) {
	return ParseTimestamp(raw)
}

// ParseTimestamp accepts the timestamp layouts found in the raw files.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range observationLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	// Some exports carry a zone offset; keep the wall clock.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05-07:00", s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}
