package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
)

func TestFloat_OrZero(t *testing.T) {
	assert.Equal(t, model.Some(0), model.Null().OrZero())
	assert.Equal(t, model.Some(3.5), model.Some(3.5).OrZero())
	assert.False(t, model.Float{}.Valid)
}

func TestMetrics_FillZeroAndValues(t *testing.T) {
	m := model.Metrics{Temperature: model.Some(-1.2), Cloud: model.Some(8)}
	filled := m.FillZero()

	assert.Equal(t, []model.Float{model.Some(-1.2), model.Some(0), model.Some(0), model.Some(0), model.Some(8)}, filled.Values())
	assert.Equal(t, filled, model.MetricsFromValues(filled.Values()))
	assert.False(t, m.WindSpeed.Valid, "FillZero must not touch the receiver")
}

func TestEnergyTable_Column(t *testing.T) {
	tbl := model.EnergyTable{
		Columns: []string{"dangjin", "ulsan"},
		Values:  [][]model.Float{{model.Some(1)}, {model.Some(2)}},
	}
	v, ok := tbl.Column("ulsan")
	assert.True(t, ok)
	assert.Equal(t, []model.Float{model.Some(2)}, v)

	_, ok = tbl.Column("dangjin_floating")
	assert.False(t, ok)
}

func TestBoundaries(t *testing.T) {
	b := model.Boundaries{ID: "ulsan", Len: 10, Train: 6, Valid: 8}
	assert.Equal(t, 6, b.TrainLen())
	assert.Equal(t, 2, b.ValidLen())
	assert.Equal(t, 2, b.TestLen())
}
