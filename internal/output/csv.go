package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/timenorm"
)

// FinalHeader is the column order of the final dataset.
var FinalHeader = []string{
	"ID", "date", "month", "week_of_year", "day_of_month",
	"temperature", "wind_speed", "wind_direction", "humidity", "cloud",
	"energy", "Region", "days_from_start",
}

// MergedHeader is the column order of the stacked table export.
var MergedHeader = []string{
	"index", "ID", "time", "region",
	"obs_temp", "obs_windSpd", "obs_windDir", "obs_humid", "obs_cloud",
	"fcst_temp", "fcst_windSpd", "fcst_windDir", "fcst_humid", "fcst_cloud",
	"energy",
}

// WriteFinalCSV renders the final dataset.
func WriteFinalCSV(w io.Writer, rows []model.SplitRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FinalHeader); err != nil {
		return err
	}
	rec := make([]string, len(FinalHeader))
	for _, r := range rows {
		rec = rec[:0]
		rec = append(rec,
			r.ID,
			timenorm.Format(r.Date),
			strconv.Itoa(r.Month),
			strconv.Itoa(r.WeekOfYear),
			strconv.Itoa(r.DayOfMonth),
		)
		for _, v := range r.Weather.Values() {
			rec = append(rec, FormatValue(v))
		}
		rec = append(rec, FormatValue(r.Energy), r.Region, strconv.Itoa(r.DaysFromStart))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMergedCSV renders the stacked table before splitting.
func WriteMergedCSV(w io.Writer, rows []model.StackedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MergedHeader); err != nil {
		return err
	}
	rec := make([]string, len(MergedHeader))
	for _, r := range rows {
		rec = rec[:0]
		rec = append(rec, strconv.Itoa(r.Index), r.ID, timenorm.Format(r.Time), r.Region)
		for _, v := range r.Obs.Values() {
			rec = append(rec, FormatValue(v))
		}
		for _, v := range r.Fcst.Values() {
			rec = append(rec, FormatValue(v))
		}
		rec = append(rec, FormatValue(r.Energy))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
