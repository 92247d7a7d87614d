package split_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/split"
)

var (
	epoch = time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)
	rates = config.Rates{Train: 60, Valid: 20, Test: 20}
)

func stacked(id, region string, n int) []model.StackedRow {
	rows := make([]model.StackedRow, n)
	for i := range rows {
		rows[i] = model.StackedRow{
			AlignedRow: model.AlignedRow{
				Region: region,
				Time:   epoch.Add(time.Duration(i+1) * time.Hour),
				Obs:    model.Metrics{Temperature: model.Some(float64(i)), Cloud: model.Some(1)},
				Fcst:   model.Metrics{Temperature: model.Some(float64(100 + i)), Cloud: model.Some(2)},
			},
			ID:     id,
			Energy: model.Some(float64(10 * i)),
		}
	}
	return rows
}

func TestComputeBoundaries(t *testing.T) {
	tests := []struct {
		n, train, valid int
	}{
		{0, 0, 0},
		{3, 2, 2},   // 1.8 -> 2, 2.4 -> 2
		{5, 3, 4},   // 3.0, 4.0
		{10, 6, 8},  // 6.0, 8.0
		{25, 15, 20},
		{1, 1, 1},   // 0.6 -> 1, 0.8 -> 1
	}
	for _, tt := range tests {
		train, valid := split.ComputeBoundaries(tt.n, rates)
		assert.Equal(t, tt.train, train, "n=%d", tt.n)
		assert.Equal(t, tt.valid, valid, "n=%d", tt.n)
	}

	// Half values round to even: 50:0:50 over 5 rows puts the cut at 2.5 -> 2.
	train, valid := split.ComputeBoundaries(5, config.Rates{Train: 50, Valid: 0, Test: 50})
	assert.Equal(t, 2, train)
	assert.Equal(t, 2, valid)
	// 7 rows at 50% -> 3.5 -> 4.
	train, _ = split.ComputeBoundaries(7, config.Rates{Train: 50, Valid: 0, Test: 50})
	assert.Equal(t, 4, train)
}

func TestSplit_ObservedThenForecast(t *testing.T) {
	rows := stacked("ulsan", "울산", 10)
	out, bounds := split.Split(rows, rates, epoch)
	require.Len(t, out, 10)
	require.Len(t, bounds, 1)
	assert.Equal(t, model.Boundaries{ID: "ulsan", Len: 10, Train: 6, Valid: 8}, bounds[0])

	for i, r := range out {
		if i < 8 {
			assert.Equal(t, model.Some(float64(i)), r.Weather.Temperature, "row %d observed", i)
			assert.Equal(t, model.Some(1), r.Weather.Cloud)
		} else {
			assert.Equal(t, model.Some(float64(100+i)), r.Weather.Temperature, "row %d forecast", i)
			assert.Equal(t, model.Some(2), r.Weather.Cloud)
		}
		assert.Equal(t, model.Some(float64(10*i)), r.Energy, "energy keeps its position")
		assert.Equal(t, "울산", r.Region)
	}
}

func TestSplit_GroupsInIDOrder(t *testing.T) {
	rows := append(stacked("ulsan", "울산", 3), stacked("dangjin_floating", "당진", 4)...)
	rows = append(rows, stacked("dangjin", "당진", 2)...)

	out, bounds := split.Split(rows, rates, epoch)
	require.Len(t, out, 9)

	var order []string
	for _, b := range bounds {
		order = append(order, b.ID)
	}
	assert.Equal(t, []string{"dangjin", "dangjin_floating", "ulsan"}, order)
	assert.Equal(t, "dangjin", out[0].ID)
	assert.Equal(t, "dangjin_floating", out[2].ID)
	assert.Equal(t, "ulsan", out[8].ID)

	// Each plant keeps its stacked row count.
	counts := map[string]int{}
	for _, r := range out {
		counts[r.ID]++
	}
	assert.Equal(t, map[string]int{"dangjin": 2, "dangjin_floating": 4, "ulsan": 3}, counts)
}

func TestSplit_Empty(t *testing.T) {
	out, bounds := split.Split(nil, rates, epoch)
	assert.Empty(t, out)
	assert.Empty(t, bounds)
}

func TestCalendar(t *testing.T) {
	tests := []struct {
		date                     time.Time
		month, week, day, offset int
	}{
		{time.Date(2018, 3, 1, 1, 0, 0, 0, time.UTC), 3, 9, 1, 0},
		{time.Date(2018, 3, 2, 0, 0, 0, 0, time.UTC), 3, 9, 2, 1},
		{time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 1, 1, 1, 306},
		{time.Date(2018, 12, 31, 23, 0, 0, 0, time.UTC), 12, 1, 31, 305},
		{time.Date(2018, 2, 28, 23, 0, 0, 0, time.UTC), 2, 9, 28, -1},
	}
	for _, tt := range tests {
		r := model.SplitRow{Date: tt.date}
		split.Calendar(&r, epoch)
		assert.Equal(t, tt.month, r.Month, tt.date.String())
		assert.Equal(t, tt.week, r.WeekOfYear, tt.date.String())
		assert.Equal(t, tt.day, r.DayOfMonth, tt.date.String())
		assert.Equal(t, tt.offset, r.DaysFromStart, tt.date.String())
	}
}
