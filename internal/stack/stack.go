// Package stack attaches energy readings to every region's aligned rows and
// concatenates all regions into one long table keyed by plant.
package stack

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// Options controls how energy is attached.
type Options struct {
	// Alignment is config.AlignByPosition or config.AlignByTimestamp.
	Alignment      string
	StrictRowCount bool
	Plants         map[string][]string
	// Parallel aligns regions concurrently. Output order is unchanged.
	Parallel bool
}

// OptionsFrom builds Options from the run configuration.
func OptionsFrom(cfg *config.PrepConfig) Options {
	return Options{
		Alignment:      cfg.EnergyAlignment,
		StrictRowCount: cfg.StrictRowCount,
		Plants:         cfg.Plants,
		Parallel:       cfg.ParallelRegions,
	}
}

// AlignFunc produces the aligned rows of a region.
type AlignFunc func(ctx context.Context, region string) ([]model.AlignedRow, error)

// RegionResult summarizes one region.
type RegionResult struct {
	Region  string
	Aligned int
	Plants  []string
	Rows    []model.StackedRow
}

// Stacker runs alignment for each region and stacks the plants.
type Stacker struct {
	energy   model.EnergyTable
	align    AlignFunc
	opts     Options
	recorder metrics.MetricRecorder
}

// NewStacker creates a Stacker.
func NewStacker(energy model.EnergyTable, align AlignFunc, opts Options, recorder metrics.MetricRecorder) *Stacker {
	if opts.Alignment == "" {
		opts.Alignment = config.AlignByPosition
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Stacker{energy: energy, align: align, opts: opts, recorder: recorder}
}

// Stack processes regions and concatenates their rows in region order.
func (s *Stacker) Stack(ctx context.Context, regions []string) ([]model.StackedRow, []RegionResult, error) {
	results := make([]RegionResult, len(regions))

	if s.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, region := range regions {
			i, region := i, region
			g.Go(func() error {
				r, err := s.region(gctx, region)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i, region := range regions {
			r, err := s.region(ctx, region)
			if err != nil {
				return nil, nil, err
			}
			results[i] = r
		}
	}

	var total int
	for _, r := range results {
		total += len(r.Rows)
	}
	out := make([]model.StackedRow, 0, total)
	for _, r := range results {
		out = append(out, r.Rows...)
	}
	return out, results, nil
}

func (s *Stacker) region(ctx context.Context, region string) (RegionResult, error) {
	start := time.Now()
	aligned, err := s.align(ctx, region)
	if err != nil {
		return RegionResult{}, fmt.Errorf("region %s: %w", region, err)
	}
	s.recorder.RecordStageRows(ctx, "aligned", region, len(aligned))

	plants, err := ResolvePlants(region, s.energy.Columns, s.opts.Plants)
	if err != nil {
		return RegionResult{}, err
	}
	if len(plants) == 0 {
		logger.Warnf("Region %s owns no energy column; it contributes no rows.", region)
	}

	res := RegionResult{Region: region, Aligned: len(aligned), Plants: plants}
	for _, plant := range plants {
		rows, err := s.attach(region, plant, aligned)
		if err != nil {
			return RegionResult{}, err
		}
		res.Rows = append(res.Rows, rows...)
	}
	s.recorder.RecordStageRows(ctx, "stacked", region, len(res.Rows))
	s.recorder.RecordDuration(ctx, "region_stack", time.Since(start), map[string]string{"region": region})
	logger.Infof("Processing done. (region: %s, aligned rows: %d, plants: %v)", region, len(aligned), plants)
	return res, nil
}

// attach copies aligned into plant rows, fills missing values with 0 and
// sets the energy reading.
func (s *Stacker) attach(region, plant string, aligned []model.AlignedRow) ([]model.StackedRow, error) {
	values, _ := s.energy.Column(plant)

	var energyAt func(i int, row model.AlignedRow) model.Float
	switch s.opts.Alignment {
	case config.AlignByTimestamp:
		byTime := make(map[int64]int, len(s.energy.Times))
		for i, t := range s.energy.Times {
			// First reading of a duplicated time wins.
			if _, dup := byTime[t.UnixNano()]; !dup {
				byTime[t.UnixNano()] = i
			}
		}
		energyAt = func(_ int, row model.AlignedRow) model.Float {
			if i, ok := byTime[row.Time.UnixNano()]; ok {
				return values[i]
			}
			return model.Null()
		}
	default:
		if len(aligned) != len(values) {
			if s.opts.StrictRowCount {
				return nil, fmt.Errorf("plant %s: region %s has %d aligned rows but %d energy readings", plant, region, len(aligned), len(values))
			}
			logger.Warnf("Plant %s: region %s has %d aligned rows but %d energy readings; energy is attached by position.", plant, region, len(aligned), len(values))
		}
		energyAt = func(i int, _ model.AlignedRow) model.Float {
			if i < len(values) {
				return values[i]
			}
			return model.Null()
		}
	}

	rows := make([]model.StackedRow, len(aligned))
	for i, a := range aligned {
		a.Obs = a.Obs.FillZero()
		a.Fcst = a.Fcst.FillZero()
		rows[i] = model.StackedRow{
			AlignedRow: a,
			ID:         plant,
			Energy:     energyAt(i, a).OrZero(),
		}
	}
	return rows, nil
}
