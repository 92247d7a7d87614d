// Package model holds the row and table types that flow through the
// preparation pipeline. Values are never mutated once a stage returns them.
package model

// Float is a nullable float64. The zero value is null.
type Float struct {
	Value float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) Float { return Float{Value: v, Valid: true} }

// Null returns an absent value.
func Null() Float { return Float{} }

// OrZero returns the value, or 0 when null.
func (f Float) OrZero() Float {
	if f.Valid {
		return f
	}
	return Some(0)
}

// Metrics are the five weather quantities shared by observations and forecasts.
type Metrics struct {
	Temperature   Float
	WindSpeed     Float
	WindDirection Float
	Humidity      Float
	Cloud         Float
}

// MetricNames lists the metric keys in column order.
var MetricNames = []string{"temperature", "wind_speed", "wind_direction", "humidity", "cloud"}

// Values returns the metrics in MetricNames order.
func (m Metrics) Values() []Float {
	return []Float{m.Temperature, m.WindSpeed, m.WindDirection, m.Humidity, m.Cloud}
}

// FillZero replaces every null metric with 0.
func (m Metrics) FillZero() Metrics {
	return Metrics{
		Temperature:   m.Temperature.OrZero(),
		WindSpeed:     m.WindSpeed.OrZero(),
		WindDirection: m.WindDirection.OrZero(),
		Humidity:      m.Humidity.OrZero(),
		Cloud:         m.Cloud.OrZero(),
	}
}

// MetricsFromValues builds Metrics from values in MetricNames order.
func MetricsFromValues(v []Float) Metrics {
	return Metrics{
		Temperature:   v[0],
		WindSpeed:     v[1],
		WindDirection: v[2],
		Humidity:      v[3],
		Cloud:         v[4],
	}
}
