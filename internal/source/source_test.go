package source_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/source"
	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/local"
)

const obsCSV = "\ufeff지점,지점명,일시,기온(°C),풍속(m/s),풍향(16방위),습도(%),전운량(10분위)\n" +
	"152,울산,2018-03-01 00:00,6.5,1.2,320,45,0\n" +
	"152,울산,2018-03-01 01:00,5.9,,290,50,\n"

const fcstCSV = "Forecast time,forecast,Temperature,WindSpeed,WindDirection,Humidity,Cloud,Extra\n" +
	"2018-03-01 05:00:00,4.0,3.0,2.5,300.0,60.0,1.0,x\n" +
	"2018-03-01 05:00:00,7.0,5.0,3.0,310.0,55.0,2.0,y\n"

const energyCSV = "time,dangjin_floating,dangjin_warehouse,dangjin,ulsan\n" +
	"2018-03-01 1:00:00,0,0,0,0\n" +
	"2018-03-01 24:00:00,0,0,0,12.5\n"

func at(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	return t
}

func read(t *testing.T, name, body string) *source.RawTable {
	tbl, err := source.ReadCSV(strings.NewReader(body), name, "utf-8")
	require.NoError(t, err)
	return tbl
}

func TestReadCSV_StripsBOMAndPads(t *testing.T) {
	tbl := read(t, "short.csv", "\ufeffa,b,c\n1,2\n\n4,5,6,7\n")
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"4", "5", "6"}}, tbl.Rows)
	assert.Equal(t, 0, tbl.Index("a"))
	assert.Equal(t, -1, tbl.Index("d"))
}

func TestReadCSV_EUCKR(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String("지점,지점명\n152,울산\n")
	require.NoError(t, err)

	tbl, err := source.ReadCSV(bytes.NewBufferString(encoded), "ulsan_obs_data.csv", "euc-kr")
	require.NoError(t, err)
	assert.Equal(t, []string{"지점", "지점명"}, tbl.Header)
	assert.Equal(t, "울산", tbl.Rows[0][1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := source.ReadCSV(strings.NewReader(""), "empty.csv", "")
	assert.ErrorIs(t, err, source.ErrSchemaMismatch)
}

func TestParseFloat(t *testing.T) {
	for _, cell := range []string{"", " ", "NaN", "nan"} {
		f, err := source.ParseFloat(cell)
		require.NoError(t, err)
		assert.False(t, f.Valid, cell)
	}
	f, err := source.ParseFloat(" -1.5 ")
	require.NoError(t, err)
	assert.Equal(t, model.Some(-1.5), f)

	_, err = source.ParseFloat("calm")
	assert.Error(t, err)
}

func TestProcessObservation(t *testing.T) {
	rows, err := source.ProcessObservation(read(t, "ulsan_obs_data.csv", obsCSV), config.Default().ObservationColumns)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "울산", rows[0].Region)
	assert.Equal(t, at("2018-03-01 00:00:00"), rows[0].Time)
	assert.Equal(t, model.Some(6.5), rows[0].Obs.Temperature)
	assert.Equal(t, model.Some(0), rows[0].Obs.Cloud)
	assert.False(t, rows[1].Obs.WindSpeed.Valid)
	assert.False(t, rows[1].Obs.Cloud.Valid)
}

func TestProcessObservation_MissingColumns(t *testing.T) {
	body := "지점명,일시,기온(°C),풍속(m/s),풍향(16방위),습도(%)\n울산,2018-03-01 00:00,1,1,1,1\n"
	_, err := source.ProcessObservation(read(t, "ulsan_obs_data.csv", body), config.Default().ObservationColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrSchemaMismatch))
	assert.Contains(t, err.Error(), `ulsan_obs_data.csv: missing column "지점"`)
	assert.Contains(t, err.Error(), `missing column "전운량(10분위)"`)
}

func TestProcessObservation_BadTimestamp(t *testing.T) {
	body := "지점,지점명,일시,기온(°C),풍속(m/s),풍향(16방위),습도(%),전운량(10분위)\n152,울산,soon,1,1,1,1,1\n"
	_, err := source.ProcessObservation(read(t, "ulsan_obs_data.csv", body), config.Default().ObservationColumns)
	assert.ErrorIs(t, err, source.ErrSchemaMismatch)
	assert.ErrorContains(t, err, "line 2")
}

func TestProcessForecast(t *testing.T) {
	rows, err := source.ProcessForecast(read(t, "ulsan_fcst_data.csv", fcstCSV), config.Default().ForecastColumns)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, at("2018-03-01 05:00:00"), rows[0].Issued)
	assert.Equal(t, 4.0, rows[0].HorizonHours)
	assert.Equal(t, at("2018-03-01 09:00:00"), rows[0].Time)
	assert.Equal(t, at("2018-03-01 12:00:00"), rows[1].Time)
	assert.Equal(t, model.Some(310), rows[1].Fcst.WindDirection)
}

func TestProcessForecast_MissingColumn(t *testing.T) {
	body := "Forecast time,forecast,Temperature,WindSpeed,WindDirection,Humidity\n2018-03-01 05:00:00,4,1,1,1,1\n"
	_, err := source.ProcessForecast(read(t, "dangjin_fcst_data.csv", body), config.Default().ForecastColumns)
	assert.ErrorIs(t, err, source.ErrSchemaMismatch)
	assert.ErrorContains(t, err, `dangjin_fcst_data.csv: missing column "Cloud"`)
}

func TestProcessEnergy(t *testing.T) {
	et, err := source.ProcessEnergy(read(t, "energy.csv", energyCSV), "time")
	require.NoError(t, err)

	assert.Equal(t, []string{"dangjin_floating", "dangjin_warehouse", "dangjin", "ulsan"}, et.Columns)
	assert.Equal(t, []time.Time{at("2018-03-01 01:00:00"), at("2018-03-02 00:00:00")}, et.Times)
	ulsan, ok := et.Column("ulsan")
	require.True(t, ok)
	assert.Equal(t, []model.Float{model.Some(0), model.Some(12.5)}, ulsan)
	assert.Equal(t, 2, et.Len())
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "input")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Input.Prefix = "csv_data/"
	for name, body := range map[string]string{
		"csv_data/ulsan_obs_data.csv":  obsCSV,
		"csv_data/ulsan_fcst_data.csv": fcstCSV,
		"csv_data/energy.csv":          energyCSV,
	} {
		require.NoError(t, conn.Upload(ctx, "", name, strings.NewReader(body), "text/csv"))
	}

	loader := source.NewLoader(conn, cfg, nil)
	rs, err := loader.LoadRegion(ctx, "ulsan")
	require.NoError(t, err)
	assert.Equal(t, "ulsan", rs.Region)
	assert.Len(t, rs.Observations, 2)
	assert.Len(t, rs.Forecasts, 2)

	et, err := loader.LoadEnergy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, et.Len())

	_, err = loader.LoadRegion(ctx, "dangjin")
	assert.ErrorIs(t, err, source.ErrSourceNotFound)
	assert.ErrorContains(t, err, "csv_data/dangjin_obs_data.csv")
	assert.ErrorContains(t, err, "available regions: ulsan")

	regions, err := loader.AvailableRegions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ulsan"}, regions)
}
