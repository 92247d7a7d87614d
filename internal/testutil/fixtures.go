// Package testutil generates small input files in the layout the loader
// expects. Observation rows start at 2018-03-01 01:00 and advance hourly.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
)

var start = time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

const observationHeader = "지점,지점명,일시,기온(°C),풍속(m/s),풍향(16방위),습도(%),전운량(10분위)\n"

// ObservationCSV returns hours observation rows for station. Temperature
// equals the hour number.
func ObservationCSV(station string, hours int) string {
	var b strings.Builder
	b.WriteString(observationHeader)
	for h := 1; h <= hours; h++ {
		ts := start.Add(time.Duration(h) * time.Hour).Format("2006-01-02 15:04")
		fmt.Fprintf(&b, "1,%s,%s,%d,1,180,50,3\n", station, ts, h)
	}
	return b.String()
}

// ForecastCSV returns one forecast per hour, all issued at midnight.
// Temperature is 100 plus the horizon.
func ForecastCSV(hours int) string {
	return ForecastCSVIssuedAfter(0, hours)
}

// ForecastCSVIssuedAfter is ForecastCSV with every forecast issued offset
// hours after midnight.
func ForecastCSVIssuedAfter(offset, hours int) string {
	issued := start.Add(time.Duration(offset) * time.Hour).Format("2006-01-02 15:04:05")
	var b strings.Builder
	b.WriteString("Forecast time,forecast,Temperature,WindSpeed,WindDirection,Humidity,Cloud\n")
	for h := 1; h <= hours; h++ {
		fmt.Fprintf(&b, "%s,%d,%d,2,90,60,4\n", issued, h, 100+h)
	}
	return b.String()
}

// EnergyCSV returns hours energy rows. Column c (zero based) holds 10*(c+1)+hour.
func EnergyCSV(columns []string, hours int) string {
	var b strings.Builder
	b.WriteString("time," + strings.Join(columns, ",") + "\n")
	for h := 1; h <= hours; h++ {
		// Unpadded clock, with midnight written as 24:00:00 of the previous day.
		day, hour := start.Add(time.Duration(h-1)*time.Hour), h%24
		if hour == 0 {
			hour = 24
		}
		fmt.Fprintf(&b, "%s %d:00:00", day.Format("2006-01-02"), hour)
		for c := range columns {
			fmt.Fprintf(&b, ",%d", 10*(c+1)+h)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Seed uploads observation and forecast files for every region and one
// energy file with a column per region. The station name is the upper-cased
// region.
func Seed(ctx context.Context, conn storage.StorageConnection, regions []string, hours int) error {
	put := func(name, body string) error {
		return conn.Upload(ctx, "", name, strings.NewReader(body), "text/csv")
	}
	for _, r := range regions {
		if err := put(r+"_obs_data.csv", ObservationCSV(strings.ToUpper(r), hours)); err != nil {
			return err
		}
		if err := put(r+"_fcst_data.csv", ForecastCSV(hours)); err != nil {
			return err
		}
	}
	return put("energy.csv", EnergyCSV(regions, hours))
}
