package output

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
)

// parquetRow mirrors FinalHeader.
type parquetRow struct {
	ID            string   `parquet:"name=ID, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date          int64    `parquet:"name=date, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Month         int32    `parquet:"name=month, type=INT32"`
	WeekOfYear    int32    `parquet:"name=week_of_year, type=INT32"`
	DayOfMonth    int32    `parquet:"name=day_of_month, type=INT32"`
	Temperature   *float64 `parquet:"name=temperature, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindSpeed     *float64 `parquet:"name=wind_speed, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindDirection *float64 `parquet:"name=wind_direction, type=DOUBLE, repetitiontype=OPTIONAL"`
	Humidity      *float64 `parquet:"name=humidity, type=DOUBLE, repetitiontype=OPTIONAL"`
	Cloud         *float64 `parquet:"name=cloud, type=DOUBLE, repetitiontype=OPTIONAL"`
	Energy        *float64 `parquet:"name=energy, type=DOUBLE, repetitiontype=OPTIONAL"`
	Region        string   `parquet:"name=Region, type=BYTE_ARRAY, convertedtype=UTF8"`
	DaysFromStart int32    `parquet:"name=days_from_start, type=INT32"`
}

func optional(f model.Float) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func toParquetRow(r model.SplitRow) parquetRow {
	return parquetRow{
		ID:            r.ID,
		Date:          r.Date.UnixMilli(),
		Month:         int32(r.Month),
		WeekOfYear:    int32(r.WeekOfYear),
		DayOfMonth:    int32(r.DayOfMonth),
		Temperature:   optional(r.Weather.Temperature),
		WindSpeed:     optional(r.Weather.WindSpeed),
		WindDirection: optional(r.Weather.WindDirection),
		Humidity:      optional(r.Weather.Humidity),
		Cloud:         optional(r.Weather.Cloud),
		Energy:        optional(r.Energy),
		Region:        r.Region,
		DaysFromStart: int32(r.DaysFromStart),
	}
}

// CompressionCodec maps a configured name to a Parquet codec.
func CompressionCodec(name string) (parquet.CompressionCodec, error) {
	switch name {
	case "", "SNAPPY", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP", "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "none", "UNCOMPRESSED":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return parquet.CompressionCodec_UNCOMPRESSED, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

// WriteParquet renders the final dataset as a single Parquet file.
func WriteParquet(w io.Writer, rows []model.SplitRow, compression string) (err error) {
	codec, err := CompressionCodec(compression)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriterFromWriter(w, new(parquetRow), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			return fmt.Errorf("failed to write parquet row for %s: %w", r.ID, err)
		}
	}

	// WriteStop may panic.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
