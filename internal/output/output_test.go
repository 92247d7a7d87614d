package output_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/output"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/local"
)

func splitRows() []model.SplitRow {
	date := time.Date(2018, 3, 1, 1, 0, 0, 0, time.UTC)
	return []model.SplitRow{
		{
			ID: "dangjin", Region: "당진", Date: date, Month: 3, WeekOfYear: 9, DayOfMonth: 1, DaysFromStart: 0,
			Weather: model.Metrics{
				Temperature: model.Some(-2), WindSpeed: model.Some(1.5), WindDirection: model.Some(320),
				Humidity: model.Some(45), Cloud: model.Some(0),
			},
			Energy: model.Some(0),
		},
		{
			ID: "ulsan", Region: "울산", Date: date.Add(time.Hour), Month: 3, WeekOfYear: 9, DayOfMonth: 1, DaysFromStart: 0,
			Weather: model.Metrics{Temperature: model.Some(0.1)},
			Energy:  model.Some(12.25),
		},
	}
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0:        "0.0",
		12:       "12.0",
		-2:       "-2.0",
		0.1:      "0.1",
		12.25:    "12.25",
		1e-05:    "1e-05",
		0.0001:   "0.0001",
		1.5e16:   "1.5e+16",
		123456.5: "123456.5",
	}
	for v, want := range tests {
		assert.Equal(t, want, output.FormatFloat(v))
	}
	assert.Equal(t, "", output.FormatValue(model.Null()))
}

func TestWriteFinalCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.WriteFinalCSV(&buf, splitRows()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,date,month,week_of_year,day_of_month,temperature,wind_speed,wind_direction,humidity,cloud,energy,Region,days_from_start", lines[0])
	assert.Equal(t, "dangjin,2018-03-01 01:00:00,3,9,1,-2.0,1.5,320.0,45.0,0.0,0.0,당진,0", lines[1])
	assert.Equal(t, "ulsan,2018-03-01 02:00:00,3,9,1,0.1,,,,,12.25,울산,0", lines[2])
}

func TestWriteMergedCSV(t *testing.T) {
	rows := []model.StackedRow{{
		AlignedRow: model.AlignedRow{
			Index: 7, Region: "울산", Time: time.Date(2018, 3, 1, 1, 0, 0, 0, time.UTC),
			Obs:  model.Metrics{Temperature: model.Some(1)},
			Fcst: model.Metrics{Cloud: model.Some(4)},
		},
		ID:     "ulsan",
		Energy: model.Some(3),
	}}
	var buf bytes.Buffer
	require.NoError(t, output.WriteMergedCSV(&buf, rows))
	assert.Equal(t,
		"index,ID,time,region,obs_temp,obs_windSpd,obs_windDir,obs_humid,obs_cloud,fcst_temp,fcst_windSpd,fcst_windDir,fcst_humid,fcst_cloud,energy\n"+
			"7,ulsan,2018-03-01 01:00:00,울산,1.0,,,,,,,,,4.0,3.0\n",
		buf.String())
}

func TestWriteParquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.WriteParquet(&buf, splitRows(), "SNAPPY"))
	b := buf.Bytes()
	require.Greater(t, len(b), 8)
	assert.Equal(t, "PAR1", string(b[:4]))
	assert.Equal(t, "PAR1", string(b[len(b)-4:]))

	assert.Error(t, output.WriteParquet(&bytes.Buffer{}, nil, "LZ4"))
}

func TestWriteXLSX(t *testing.T) {
	bounds := []model.Boundaries{{ID: "dangjin", Len: 1, Train: 1, Valid: 1}, {ID: "ulsan", Len: 1, Train: 1, Valid: 1}}
	var buf bytes.Buffer
	require.NoError(t, output.WriteXLSX(&buf, splitRows(), bounds))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "dangjin", "ulsan"}, f.GetSheetList())

	summary, err := f.GetRows("summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"ID", "rows", "#train", "#valid", "#test", "train_boundary", "valid_boundary"}, summary[0])
	assert.Equal(t, "ulsan", summary[2][0])

	ulsan, err := f.GetRows("ulsan")
	require.NoError(t, err)
	require.Len(t, ulsan, 2)
	assert.Equal(t, output.FinalHeader, ulsan[0])
	assert.Equal(t, "ulsan", ulsan[1][0])
	assert.Equal(t, "2018-03-01 02:00:00", ulsan[1][1])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "dangjin_floating", output.SheetName("dangjin_floating"))
	assert.Equal(t, "a_b_c", output.SheetName("a/b:c"))
	assert.Equal(t, "_", output.SheetName(""))
	assert.Len(t, []rune(output.SheetName(strings.Repeat("x", 40))), 31)
}

func TestWriteXLSX_CollidingSheetNames(t *testing.T) {
	date := time.Date(2018, 3, 1, 1, 0, 0, 0, time.UTC)
	long := strings.Repeat("p", 35)
	var rows []model.SplitRow
	for i, id := range []string{"Summary", "Ulsan", "a/b", "a:b", long + "1", long + "2", "ulsan"} {
		rows = append(rows, model.SplitRow{ID: id, Date: date, Energy: model.Some(float64(i))})
	}

	var buf bytes.Buffer
	require.NoError(t, output.WriteXLSX(&buf, rows, nil))
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	prefix := strings.Repeat("p", 31)
	assert.Equal(t, []string{
		"summary", "Summary_2", "Ulsan", "a_b", "a_b_2", prefix, strings.Repeat("p", 29) + "_2", "ulsan_2",
	}, f.GetSheetList())

	for sheet, id := range map[string]string{"Summary_2": "Summary", "Ulsan": "Ulsan", "ulsan_2": "ulsan", "a_b_2": "a:b"} {
		got, err := f.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, got, 2, sheet)
		assert.Equal(t, id, got[1][0], sheet)
	}
	summary, err := f.GetRows("summary")
	require.NoError(t, err)
	assert.Len(t, summary, 1)
}

func TestExporter(t *testing.T) {
	ctx := context.Background()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "output")
	require.NoError(t, err)

	cfg := config.OutputConfig{
		Path:        "final.csv",
		MergedPath:  "merged.csv",
		ParquetPath: "final.parquet",
		XLSXPath:    "final.xlsx",
	}
	exp := output.NewExporter(conn, cfg, nil)

	exists, err := exp.OutputExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	written, err := exp.Export(ctx, nil, splitRows(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"merged.csv", "final.parquet", "final.xlsx", "final.csv"}, written)

	for _, name := range []string{"final.csv", "merged.csv", "final.parquet", "final.xlsx"} {
		ok, err := conn.Exists(ctx, "", name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
	exists, err = exp.OutputExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExporter_RenderFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "output")
	require.NoError(t, err)

	exp := output.NewExporter(conn, config.OutputConfig{Path: "final.csv", ParquetPath: "final.parquet", ParquetCompression: "LZ4"}, nil)
	_, err = exp.Export(ctx, nil, splitRows(), nil)
	require.Error(t, err)

	ok, err := conn.Exists(ctx, "", "final.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

// failingUpload rejects uploads of one object and passes everything else through.
type failingUpload struct {
	storage.StorageConnection
	object string
}

func (f failingUpload) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	if objectName == f.object {
		return errors.New("quota exceeded")
	}
	return f.StorageConnection.Upload(ctx, bucket, objectName, data, contentType)
}

func TestExporter_UploadFailureRemovesWrittenObjects(t *testing.T) {
	ctx := context.Background()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "output")
	require.NoError(t, err)

	cfg := config.OutputConfig{Path: "final.csv", MergedPath: "merged.csv", ParquetPath: "final.parquet"}
	exp := output.NewExporter(failingUpload{StorageConnection: conn, object: "final.csv"}, cfg, nil)
	written, err := exp.Export(ctx, nil, splitRows(), nil)
	require.ErrorContains(t, err, "quota exceeded")
	assert.Empty(t, written)

	for _, name := range []string{"final.csv", "merged.csv", "final.parquet"} {
		ok, err := conn.Exists(ctx, "", name)
		require.NoError(t, err)
		assert.False(t, ok, name)
	}
}
