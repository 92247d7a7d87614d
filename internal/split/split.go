// Package split cuts each plant's series into a segment with observed
// weather (training and validation) and a segment with forecast weather
// (test), and derives the calendar features of the final dataset.
package split

import (
	"math"
	"sort"
	"time"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/timenorm"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// ComputeBoundaries returns the train and validation boundaries of a series
// of length n. Both are rounded half to even.
func ComputeBoundaries(n int, rates config.Rates) (train, valid int) {
	sum := float64(rates.Sum())
	train = int(math.RoundToEven(float64(rates.Train) / sum * float64(n)))
	valid = int(math.RoundToEven(float64(rates.Train+rates.Valid) / sum * float64(n)))
	return train, valid
}

// Calendar fills the date derived fields of a row.
func Calendar(row *model.SplitRow, epoch time.Time) {
	_, week := row.Date.ISOWeek()
	row.Month = int(row.Date.Month())
	row.WeekOfYear = week
	row.DayOfMonth = row.Date.Day()
	row.DaysFromStart = int(math.Floor(row.Date.Sub(epoch).Hours() / 24))
}

// Split groups rows by plant, in plant id order, and cuts every group. Within
// a group, rows before the validation boundary take the observed weather and
// the rest take the forecast. Energy stays with its row.
func Split(rows []model.StackedRow, rates config.Rates, epoch time.Time) ([]model.SplitRow, []model.Boundaries) {
	groups := make(map[string][]int)
	var ids []string
	for i, r := range rows {
		if _, ok := groups[r.ID]; !ok {
			ids = append(ids, r.ID)
		}
		groups[r.ID] = append(groups[r.ID], i)
	}
	sort.Strings(ids)

	out := make([]model.SplitRow, 0, len(rows))
	bounds := make([]model.Boundaries, 0, len(ids))
	for _, id := range ids {
		idx := groups[id]
		train, valid := ComputeBoundaries(len(idx), rates)
		b := model.Boundaries{ID: id, Len: len(idx), Train: train, Valid: valid}
		bounds = append(bounds, b)
		logBoundaries(b, rows, idx)

		for pos, i := range idx {
			r := rows[i]
			weather := r.Fcst
			if pos < valid {
				weather = r.Obs
			}
			sr := model.SplitRow{
				ID:      r.ID,
				Region:  r.Region,
				Date:    r.Time,
				Weather: weather,
				Energy:  r.Energy,
			}
			Calendar(&sr, epoch)
			out = append(out, sr)
		}
	}
	return out, bounds
}

func logBoundaries(b model.Boundaries, rows []model.StackedRow, idx []int) {
	at := func(pos int) string {
		if pos >= 0 && pos < len(idx) {
			return timenorm.Format(rows[idx[pos]].Time)
		}
		return "-"
	}
	logger.Infof("%s(#=%d) train: %s ~ (#train=%d), valid: %s ~ (#valid=%d), test: %s ~ %s (#test=%d)",
		b.ID, b.Len,
		at(0), b.TrainLen(),
		at(b.Train), b.ValidLen(),
		at(b.Valid), at(b.Len-1), b.TestLen())
}
