// Package align joins a region's observations with its forecasts on the
// canonical timestamp, keeping a single forecast per target time.
package align

import (
	"sort"
	"time"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
)

// joined is a row of the outer join before deduplication.
type joined struct {
	model.AlignedRow
	issued    time.Time
	hasIssued bool
}

// Align outer-joins obs and fcst on time, orders the result by time and
// issuance (rows without a forecast last), keeps the last row of every
// time, so the most recent issuance wins, and finally drops rows that have no
// region. Rows that only exist in the forecast have no region and are dropped.
// When obs and fcst share no timestamp at all the result is empty.
func Align(obs []model.ObservationRow, fcst []model.ForecastRow) []model.AlignedRow {
	rows, shared := outerJoin(obs, fcst)
	if shared == 0 {
		return []model.AlignedRow{}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if a.hasIssued != b.hasIssued {
			return a.hasIssued
		}
		return a.issued.Before(b.issued)
	})

	out := make([]model.AlignedRow, 0, len(rows))
	for i, r := range rows {
		if i+1 < len(rows) && rows[i+1].Time.Equal(r.Time) {
			continue
		}
		if r.Region == "" {
			continue
		}
		out = append(out, r.AlignedRow)
	}
	return out
}

// outerJoin emits one row per matching (observation, forecast) pair, in key
// order, observations first within a key. Unmatched rows from either side are
// kept with the other side null. It also returns the number of timestamps
// present on both sides.
func outerJoin(obs []model.ObservationRow, fcst []model.ForecastRow) ([]joined, int) {
	// Keyed by instant.
	obsByTime := make(map[int64][]int)
	fcstByTime := make(map[int64][]int)
	var keys []time.Time
	seen := make(map[int64]bool)
	add := func(t time.Time) {
		if k := t.UnixNano(); !seen[k] {
			seen[k] = true
			keys = append(keys, t)
		}
	}
	for i, o := range obs {
		k := o.Time.UnixNano()
		obsByTime[k] = append(obsByTime[k], i)
		add(o.Time)
	}
	for i, f := range fcst {
		k := f.Time.UnixNano()
		fcstByTime[k] = append(fcstByTime[k], i)
		add(f.Time)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	rows := make([]joined, 0, len(obs)+len(fcst))
	shared := 0
	emit := func(o *model.ObservationRow, f *model.ForecastRow, t time.Time) {
		r := joined{AlignedRow: model.AlignedRow{Index: len(rows), Time: t}}
		if o != nil {
			r.Region = o.Region
			r.Obs = o.Obs
		}
		if f != nil {
			r.Fcst = f.Fcst
			r.issued = f.Issued
			r.hasIssued = true
		}
		rows = append(rows, r)
	}

	for _, t := range keys {
		oi, fi := obsByTime[t.UnixNano()], fcstByTime[t.UnixNano()]
		switch {
		case len(oi) > 0 && len(fi) > 0:
			shared++
			for _, i := range oi {
				for _, j := range fi {
					emit(&obs[i], &fcst[j], t)
				}
			}
		case len(oi) > 0:
			for _, i := range oi {
				emit(&obs[i], nil, t)
			}
		default:
			for _, j := range fi {
				emit(nil, &fcst[j], t)
			}
		}
	}
	return rows, shared
}
