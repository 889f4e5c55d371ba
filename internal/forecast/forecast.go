package forecast

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

// Point is one projected value.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is an ordered time series prepared from a date column and a
// value column.
type Series struct {
	Times  []time.Time
	Values []float64
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Values)
}

// Prepare builds a series from a table's date and value columns, dropping
// rows where either cell is unusable and sorting by time.
func Prepare(tbl *dataset.Table, dateCol, valueCol string) Series {
	var s Series
	if tbl == nil || !tbl.HasColumns(dateCol, valueCol) {
		return s
	}
	type obs struct {
		t time.Time
		v float64
	}
	var all []obs
	for i := range tbl.Rows {
		dc := tbl.Cell(i, dateCol)
		if dc.Kind != dataset.KindTime {
			continue
		}
		v, ok := tbl.Cell(i, valueCol).AsNumber()
		if !ok {
			continue
		}
		all = append(all, obs{t: dc.T, v: v})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].t.Before(all[j].t) })
	for _, o := range all {
		s.Times = append(s.Times, o.t)
		s.Values = append(s.Values, o.v)
	}
	return s
}

// Forecaster projects a series a number of periods forward.
type Forecaster interface {
	Forecast(s Series, periods int) ([]Point, error)
}

// LinearTrend is a least-squares line fit over the observation index,
// stepped forward at the series' median spacing.
type LinearTrend struct{}

// Forecast projects the fitted line. At least two observations are
// required.
func (LinearTrend) Forecast(s Series, periods int) ([]Point, error) {
	n := s.Len()
	if n < 2 {
		return nil, errors.New("linear trend: need at least 2 observations")
	}
	if periods <= 0 {
		return nil, nil
	}

	// Fit value = a + b*i over the observation index.
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range s.Values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return nil, errors.New("linear trend: degenerate index range")
	}
	b := (fn*sumXY - sumX*sumY) / denom
	a := (sumY - b*sumX) / fn

	step := medianStep(s.Times)
	last := s.Times[n-1]
	out := make([]Point, periods)
	for p := 0; p < periods; p++ {
		i := float64(n + p)
		out[p] = Point{Time: last.Add(time.Duration(p+1) * step), Value: a + b*i}
	}
	return out, nil
}

// ForecastOrFlat runs a forecaster, degrading to a flat projection of the
// last observed value when the model fails or the series is too short.
// An empty series projects nothing.
func ForecastOrFlat(f Forecaster, s Series, periods int, log *zap.Logger) []Point {
	if log == nil {
		log = zap.NewNop()
	}
	if s.Len() == 0 || periods <= 0 {
		return nil
	}
	points, err := f.Forecast(s, periods)
	if err == nil {
		return points
	}
	log.Warn("forecast degraded to flat projection", zap.Error(err))

	step := medianStep(s.Times)
	last := s.Times[s.Len()-1]
	flat := s.Values[s.Len()-1]
	out := make([]Point, periods)
	for p := 0; p < periods; p++ {
		out[p] = Point{Time: last.Add(time.Duration(p+1) * step), Value: flat}
	}
	return out
}

// medianStep estimates the observation spacing; a single observation
// defaults to 30 days.
func medianStep(times []time.Time) time.Duration {
	if len(times) < 2 {
		return 30 * 24 * time.Hour
	}
	steps := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		steps = append(steps, times[i].Sub(times[i-1]))
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	step := steps[len(steps)/2]
	if step <= 0 {
		return 30 * 24 * time.Hour
	}
	return step
}
