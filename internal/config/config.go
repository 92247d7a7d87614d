// Package config holds the settings of the dataset preparation run. The
// values come from the "application" section of application.yaml and may be
// overridden from the command line.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	coreConfig "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/configbinder"
)

// Energy alignment modes.
const (
	// AlignByPosition attaches the n-th energy reading to the n-th aligned row.
	AlignByPosition = "position"
	// AlignByTimestamp joins energy readings on their normalized time.
	AlignByTimestamp = "timestamp"
)

// Rates are the relative sizes of the train, validation and test segments.
type Rates struct {
	Train int `yaml:"train"`
	Valid int `yaml:"valid"`
	Test  int `yaml:"test"`
}

// Sum returns Train+Valid+Test.
func (r Rates) Sum() int { return r.Train + r.Valid + r.Test }

// String renders the rates as "train:valid:test".
func (r Rates) String() string { return fmt.Sprintf("%d:%d:%d", r.Train, r.Valid, r.Test) }

// ParseRates parses "60:20:20".
func ParseRates(s string) (Rates, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Rates{}, fmt.Errorf("rates %q: expected train:valid:test", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rates{}, fmt.Errorf("rates %q: %w", s, err)
		}
		v[i] = n
	}
	return Rates{Train: v[0], Valid: v[1], Test: v[2]}, nil
}

// ObservationColumns names the headers of an observation file.
type ObservationColumns struct {
	Station       string `yaml:"station"`
	Region        string `yaml:"region"`
	Time          string `yaml:"time"`
	Temperature   string `yaml:"temperature"`
	WindSpeed     string `yaml:"wind_speed"`
	WindDirection string `yaml:"wind_direction"`
	Humidity      string `yaml:"humidity"`
	Cloud         string `yaml:"cloud"`
}

// ForecastColumns names the headers of a forecast file.
type ForecastColumns struct {
	Issued        string `yaml:"issued"`
	Horizon       string `yaml:"horizon"`
	Temperature   string `yaml:"temperature"`
	WindSpeed     string `yaml:"wind_speed"`
	WindDirection string `yaml:"wind_direction"`
	Humidity      string `yaml:"humidity"`
	Cloud         string `yaml:"cloud"`
}

// InputConfig locates the raw files.
type InputConfig struct {
	// StorageRef names an entry under surfin.storage.
	StorageRef string `yaml:"storage_ref"`
	// Prefix is prepended to every object name.
	Prefix string `yaml:"prefix"`
	// EnergyFile is the shared energy file name.
	EnergyFile string `yaml:"energy_file"`
	// Encoding is "utf-8" or "euc-kr".
	Encoding string `yaml:"encoding"`
}

// OutputConfig locates the produced files.
type OutputConfig struct {
	StorageRef string `yaml:"storage_ref"`
	// Path is the object name of the final CSV.
	Path string `yaml:"path"`
	// MergedPath, when set, receives the stacked table before splitting.
	MergedPath string `yaml:"merged_path"`
	// ParquetPath, when set, receives a Parquet copy of the final table.
	ParquetPath string `yaml:"parquet_path"`
	// ParquetCompression is SNAPPY (default), GZIP or NONE.
	ParquetCompression string `yaml:"parquet_compression"`
	// XLSXPath, when set, receives a workbook with one sheet per plant.
	XLSXPath string `yaml:"xlsx_path"`
}

// PrepConfig is the complete configuration of a preparation run.
type PrepConfig struct {
	Regions []string `yaml:"regions"`
	Rates   Rates    `yaml:"rates"`
	// Plants maps a region to the energy columns it owns. Regions without an
	// entry own every energy column whose name contains the region label.
	Plants          map[string][]string `yaml:"plants"`
	EnergyAlignment string              `yaml:"energy_alignment"`
	// StrictRowCount turns a positional row count mismatch into an error.
	StrictRowCount bool `yaml:"strict_row_count"`
	// Epoch is the origin of days_from_start.
	Epoch              string             `yaml:"epoch"`
	ObservationColumns ObservationColumns `yaml:"observation_columns"`
	ForecastColumns    ForecastColumns    `yaml:"forecast_columns"`
	EnergyTimeColumn   string             `yaml:"energy_time_column"`
	Input              InputConfig        `yaml:"input"`
	Output             OutputConfig       `yaml:"output"`
	ParallelRegions    bool               `yaml:"parallel_regions"`
	// Force rebuilds the output even if it already exists.
	Force bool `yaml:"force"`
}

// Default returns a PrepConfig matching the KMA file layout with 60:20:20 rates.
func Default() *PrepConfig {
	return &PrepConfig{
		Rates:           Rates{Train: 60, Valid: 20, Test: 20},
		Plants:          map[string][]string{},
		EnergyAlignment: AlignByPosition,
		Epoch:           "2018-03-01 00:00:00",
		ObservationColumns: ObservationColumns{
			Station:       "지점",
			Region:        "지점명",
			Time:          "일시",
			Temperature:   "기온(°C)",
			WindSpeed:     "풍속(m/s)",
			WindDirection: "풍향(16방위)",
			Humidity:      "습도(%)",
			Cloud:         "전운량(10분위)",
		},
		ForecastColumns: ForecastColumns{
			Issued:        "Forecast time",
			Horizon:       "forecast",
			Temperature:   "Temperature",
			WindSpeed:     "WindSpeed",
			WindDirection: "WindDirection",
			Humidity:      "Humidity",
			Cloud:         "Cloud",
		},
		EnergyTimeColumn: "time",
		Input: InputConfig{
			StorageRef: "input",
			EnergyFile: "energy.csv",
			Encoding:   "utf-8",
		},
		Output: OutputConfig{
			StorageRef: "output",
			Path:       "final.csv",
		},
	}
}

// Load decodes the application section over the defaults.
func Load(cfg *coreConfig.Config) (*PrepConfig, error) {
	pc := Default()
	if err := configbinder.BindProperties(cfg.Application, pc); err != nil {
		return nil, fmt.Errorf("failed to decode application config: %w", err)
	}
	return pc, nil
}

// EpochTime parses Epoch.
func (c *PrepConfig) EpochTime() (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, c.Epoch, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("epoch %q is not a timestamp", c.Epoch)
}

// ObservationFile is the object name of a region's observation file.
func (c *PrepConfig) ObservationFile(region string) string {
	return c.Input.Prefix + region + "_obs_data.csv"
}

// ForecastFile is the object name of a region's forecast file.
func (c *PrepConfig) ForecastFile(region string) string {
	return c.Input.Prefix + region + "_fcst_data.csv"
}

// EnergyFile is the object name of the shared energy file.
func (c *PrepConfig) EnergyFile() string {
	return c.Input.Prefix + c.Input.EnergyFile
}

// Validate reports every problem found, not only the first.
func (c *PrepConfig) Validate() error {
	var result *multierror.Error

	if len(c.Regions) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one region is required"))
	}
	seen := make(map[string]bool, len(c.Regions))
	for _, r := range c.Regions {
		if strings.TrimSpace(r) == "" {
			result = multierror.Append(result, fmt.Errorf("region labels must not be empty"))
			continue
		}
		if seen[r] {
			result = multierror.Append(result, fmt.Errorf("region %q listed twice", r))
		}
		seen[r] = true
	}
	if c.Rates.Train < 0 || c.Rates.Valid < 0 || c.Rates.Test < 0 {
		result = multierror.Append(result, fmt.Errorf("rates must not be negative, got %s", c.Rates))
	}
	if c.Rates.Sum() <= 0 {
		result = multierror.Append(result, fmt.Errorf("rates must sum to a positive value, got %s", c.Rates))
	}
	switch c.EnergyAlignment {
	case AlignByPosition, AlignByTimestamp:
	default:
		result = multierror.Append(result, fmt.Errorf("energy_alignment must be %q or %q, got %q", AlignByPosition, AlignByTimestamp, c.EnergyAlignment))
	}
	if _, err := c.EpochTime(); err != nil {
		result = multierror.Append(result, err)
	}
	for region, cols := range c.Plants {
		if len(cols) == 0 {
			result = multierror.Append(result, fmt.Errorf("plants.%s lists no energy columns", region))
		}
	}
	switch strings.ToLower(c.Input.Encoding) {
	case "", "utf-8", "utf8", "euc-kr", "cp949":
	default:
		result = multierror.Append(result, fmt.Errorf("input.encoding %q is not supported", c.Input.Encoding))
	}
	if c.Output.Path == "" {
		result = multierror.Append(result, fmt.Errorf("output.path is required"))
	}
	return result.ErrorOrNil()
}
