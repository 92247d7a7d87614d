package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// RegionSources are the processed observation and forecast rows of one region.
type RegionSources struct {
	Region       string
	Observations []model.ObservationRow
	Forecasts    []model.ForecastRow
}

// Loader reads raw files from a storage connection.
type Loader struct {
	conn     storage.StorageConnection
	cfg      *config.PrepConfig
	recorder metrics.MetricRecorder
}

// NewLoader creates a Loader reading through conn.
func NewLoader(conn storage.StorageConnection, cfg *config.PrepConfig, recorder metrics.MetricRecorder) *Loader {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Loader{conn: conn, cfg: cfg, recorder: recorder}
}

func (l *Loader) read(ctx context.Context, name, kind string) (*RawTable, error) {
	start := time.Now()
	defer func() {
		l.recorder.RecordDuration(ctx, "source_read", time.Since(start), map[string]string{"kind": kind})
	}()

	r, err := l.conn.Download(ctx, "", name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrSourceNotFound)
		}
		return nil, err
	}
	defer r.Close()

	t, err := ReadCSV(r, name, l.cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Read %s: %d rows, columns %v", name, len(t.Rows), t.Header)
	return t, nil
}

// LoadEnergy reads and normalizes the shared energy file.
func (l *Loader) LoadEnergy(ctx context.Context) (model.EnergyTable, error) {
	t, err := l.read(ctx, l.cfg.EnergyFile(), "energy")
	if err != nil {
		return model.EnergyTable{}, err
	}
	return ProcessEnergy(t, l.cfg.EnergyTimeColumn)
}

// LoadRegion reads and processes the observation and forecast files of region.
func (l *Loader) LoadRegion(ctx context.Context, region string) (RegionSources, error) {
	obsRaw, err := l.read(ctx, l.cfg.ObservationFile(region), "obs")
	if err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			if known, listErr := l.AvailableRegions(ctx); listErr == nil {
				err = fmt.Errorf("%w (available regions: %s)", err, strings.Join(known, ", "))
			}
		}
		return RegionSources{}, err
	}
	obs, err := ProcessObservation(obsRaw, l.cfg.ObservationColumns)
	if err != nil {
		return RegionSources{}, err
	}

	fcstRaw, err := l.read(ctx, l.cfg.ForecastFile(region), "fcst")
	if err != nil {
		return RegionSources{}, err
	}
	fcst, err := ProcessForecast(fcstRaw, l.cfg.ForecastColumns)
	if err != nil {
		return RegionSources{}, err
	}

	return RegionSources{Region: region, Observations: obs, Forecasts: fcst}, nil
}

// AvailableRegions lists the regions that have an observation file under the
// input prefix, sorted by name.
func (l *Loader) AvailableRegions(ctx context.Context) ([]string, error) {
	prefix := l.cfg.Input.Prefix
	suffix := strings.TrimPrefix(l.cfg.ObservationFile(""), prefix)
	var regions []string
	err := l.conn.ListObjects(ctx, "", prefix, func(name string) error {
		rest := strings.TrimPrefix(name, prefix)
		if !strings.HasSuffix(rest, suffix) {
			return nil
		}
		region := strings.TrimSuffix(rest, suffix)
		if region == "" || strings.Contains(region, "/") {
			return nil
		}
		regions = append(regions, region)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(regions)
	return regions, nil
}
