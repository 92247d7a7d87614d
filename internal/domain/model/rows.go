package model

import "time"

// ObservationRow is one measured hour at a station.
type ObservationRow struct {
	Region string
	Time   time.Time
	Obs    Metrics
}

// ForecastRow is one forecast bulletin line. Time is the target time,
// Issued plus HorizonHours.
type ForecastRow struct {
	Issued       time.Time
	HorizonHours float64
	Time         time.Time
	Fcst         Metrics
}

// EnergyTable holds the shared energy readings, one column per plant.
// Columns[i] names Values[i]; every column has len(Times) entries.
type EnergyTable struct {
	Times   []time.Time
	Columns []string
	Values  [][]Float
}

// Column returns the readings of the named plant column.
func (t EnergyTable) Column(name string) ([]Float, bool) {
	for i, c := range t.Columns {
		if c == name {
			return t.Values[i], true
		}
	}
	return nil, false
}

// Len returns the number of readings.
func (t EnergyTable) Len() int { return len(t.Times) }

// AlignedRow is one hour of a region after observation and forecast have been
// joined. Index is the row's position in the joined table before deduplication.
type AlignedRow struct {
	Index  int
	Region string
	Time   time.Time
	Obs    Metrics
	Fcst   Metrics
}

// StackedRow is an AlignedRow attributed to one plant.
type StackedRow struct {
	AlignedRow
	ID     string
	Energy Float
}

// SplitRow is one line of the final dataset. Weather holds the observed
// metrics before the validation boundary and the forecast ones after it.
type SplitRow struct {
	ID            string
	Region        string
	Date          time.Time
	Month         int
	WeekOfYear    int
	DayOfMonth    int
	DaysFromStart int
	Weather       Metrics
	Energy        Float
}

// Boundaries describes how one plant's series was cut.
type Boundaries struct {
	ID    string
	Len   int
	Train int
	Valid int
}

// TrainLen is the number of training rows.
func (b Boundaries) TrainLen() int { return b.Train }

// ValidLen is the number of validation rows.
func (b Boundaries) ValidLen() int { return b.Valid - b.Train }

// TestLen is the number of test rows, all of which carry forecast weather.
func (b Boundaries) TestLen() int { return b.Len - b.Valid }
