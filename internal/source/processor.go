package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/timenorm"
)

func joinErrors(errs []error) error {
	var result *multierror.Error
	for _, err := range errs {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func readMetrics(t *RawTable, line int, row []string, idx map[string]int, cols []string) (model.Metrics, error) {
	v := make([]model.Float, len(cols))
	for i, c := range cols {
		f, err := ParseFloat(row[idx[c]])
		if err != nil {
			return model.Metrics{}, cellError(t, line, c, err)
		}
		v[i] = f
	}
	return model.MetricsFromValues(v), nil
}

// ProcessObservation turns an observation file into rows. The station code
// column must be present and is discarded; the station name becomes the
// row's region. A row with an empty station name keeps an empty region.
func ProcessObservation(t *RawTable, cols config.ObservationColumns) ([]model.ObservationRow, error) {
	metricCols := []string{cols.Temperature, cols.WindSpeed, cols.WindDirection, cols.Humidity, cols.Cloud}
	idx, err := t.require(append([]string{cols.Station, cols.Region, cols.Time}, metricCols...)...)
	if err != nil {
		return nil, err
	}

	out := make([]model.ObservationRow, 0, len(t.Rows))
	for line, row := range t.Rows {
		ts, err := timenorm.NormalizeObservationTime(row[idx[cols.Time]])
		if err != nil {
			return nil, cellError(t, line, cols.Time, err)
		}
		m, err := readMetrics(t, line, row, idx, metricCols)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ObservationRow{
			Region: strings.TrimSpace(row[idx[cols.Region]]),
			Time:   ts,
			Obs:    m,
		})
	}
	return out, nil
}

// ProcessForecast keeps the issuance time, the horizon and the five metrics
// of a forecast file and computes each row's target time. Other columns are
// ignored.
func ProcessForecast(t *RawTable, cols config.ForecastColumns) ([]model.ForecastRow, error) {
	metricCols := []string{cols.Temperature, cols.WindSpeed, cols.WindDirection, cols.Humidity, cols.Cloud}
	idx, err := t.require(append([]string{cols.Issued, cols.Horizon}, metricCols...)...)
	if err != nil {
		return nil, err
	}

	out := make([]model.ForecastRow, 0, len(t.Rows))
	for line, row := range t.Rows {
		horizon, err := ParseFloat(row[idx[cols.Horizon]])
		if err != nil {
			return nil, cellError(t, line, cols.Horizon, err)
		}
		if !horizon.Valid {
			return nil, cellError(t, line, cols.Horizon, fmt.Errorf("empty horizon"))
		}
		issued, target, err := timenorm.ParseForecastTime(row[idx[cols.Issued]], horizon.Value)
		if err != nil {
			return nil, cellError(t, line, cols.Issued, err)
		}
		m, err := readMetrics(t, line, row, idx, metricCols)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ForecastRow{
			Issued:       issued,
			HorizonHours: horizon.Value,
			Time:         target,
			Fcst:         m,
		})
	}
	return out, nil
}

// ProcessEnergy normalizes the time column of the energy file. Every other
// column is a plant.
func ProcessEnergy(t *RawTable, timeColumn string) (model.EnergyTable, error) {
	idx, err := t.require(timeColumn)
	if err != nil {
		return model.EnergyTable{}, err
	}
	timeIdx := idx[timeColumn]

	var (
		columns []string
		colIdx  []int
	)
	for i, h := range t.Header {
		if i == timeIdx || h == "" {
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}

	et := model.EnergyTable{
		Times:   make([]time.Time, 0, len(t.Rows)),
		Columns: columns,
		Values:  make([][]model.Float, len(columns)),
	}
	for line, row := range t.Rows {
		ts, err := timenorm.NormalizeEnergyTime(row[timeIdx])
		if err != nil {
			return model.EnergyTable{}, cellError(t, line, timeColumn, err)
		}
		et.Times = append(et.Times, ts)
		for c, i := range colIdx {
			f, err := ParseFloat(row[i])
			if err != nil {
				return model.EnergyTable{}, cellError(t, line, t.Header[i], err)
			}
			et.Values[c] = append(et.Values[c], f)
		}
	}
	return et, nil
}
