// Package describe computes the descriptive statistics used around the joins:
// column summaries, Pearson correlations, log and ratio transforms, and
// solar-cycle phase partitions.
package describe

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/solarcorr/core/join"
	"github.com/huangsam/solarcorr/core/regress"
	"github.com/huangsam/solarcorr/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmpty is returned when a summary is requested for no values.
var ErrEmpty = errors.New("no values to summarize")

// Summarize returns N, mean, median, sample std, SEM, min and max of values.
func Summarize(values []float64) (schema.Summary, error) {
	if len(values) == 0 {
		return schema.Summary{}, ErrEmpty
	}
	mean, variance := stat.MeanVariance(values, nil)
	if len(values) == 1 {
		variance = 0
	}
	std := math.Sqrt(variance)
	return schema.Summary{
		N:      len(values),
		Mean:   mean,
		Median: join.Median(values),
		Std:    std,
		SEM:    std / math.Sqrt(float64(len(values))),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}, nil
}

// Pearson returns r and its two-tailed p-value. It shares the regression
// preconditions, so constant or short inputs fail with the same kinds.
func Pearson(x, y []float64) (r, p float64, err error) {
	res, err := regress.Oracle(x, y)
	if err != nil {
		return 0, 0, err
	}
	return res.R, res.PValue, nil
}

// Log10 keeps the pairs with x > 0 and returns log10(x) next to the matching y.
// dropped counts the pairs removed by the positivity filter.
func Log10(x, y []float64) (lx, ly []float64, dropped int) {
	for i := range x {
		if i >= len(y) {
			break
		}
		if x[i] <= 0 || math.IsNaN(x[i]) {
			dropped++
			continue
		}
		lx = append(lx, math.Log10(x[i]))
		ly = append(ly, y[i])
	}
	return lx, ly, dropped
}

// Ratio divides num by den on the timestamps both series share. Rows whose
// ratio is not finite (zero or NaN denominators) are dropped and counted.
func Ratio(name string, num, den []schema.DenseSample) (schema.DenseSeries, int, error) {
	byTime := make(map[int64]float64, len(den))
	for _, s := range den {
		byTime[s.Timestamp.UnixNano()] = s.Value
	}

	var out []schema.DenseSample
	dropped := 0
	for _, s := range num {
		d, ok := byTime[s.Timestamp.UnixNano()]
		if !ok {
			continue
		}
		v := s.Value / d
		if math.IsNaN(v) || math.IsInf(v, 0) {
			dropped++
			continue
		}
		out = append(out, schema.DenseSample{Timestamp: s.Timestamp, Value: v})
	}
	series, err := schema.NewDenseSeries(name, out)
	if err != nil {
		return schema.DenseSeries{}, 0, fmt.Errorf("ratio %s: %w", name, err)
	}
	return series, dropped, nil
}

// Align returns the values of left and right at the timestamps present in both.
func Align(left, right []schema.DenseSample) (x, y []float64) {
	byTime := make(map[int64]float64, len(right))
	for _, s := range right {
		byTime[s.Timestamp.UnixNano()] = s.Value
	}
	for _, s := range left {
		if v, ok := byTime[s.Timestamp.UnixNano()]; ok {
			x = append(x, s.Value)
			y = append(y, v)
		}
	}
	return x, y
}

// Partition assigns events with Velocity > 0 and Brightness > 0 to the phases
// that contain them. Events outside every phase are counted as excluded.
func Partition(events []schema.Event, phases []schema.Phase) (map[string][]schema.Event, int) {
	out := make(map[string][]schema.Event, len(phases))
	excluded := 0
	for _, e := range events {
		if e.Velocity <= 0 || e.Brightness <= 0 {
			excluded++
			continue
		}
		placed := false
		for _, p := range phases {
			if p.Contains(e.Timestamp) {
				out[p.Name] = append(out[p.Name], e)
				placed = true
			}
		}
		if !placed {
			excluded++
		}
	}
	return out, excluded
}

// PhaseStats summarizes brightness and velocity per phase, in phase order.
// Phases without events are reported with zero summaries.
func PhaseStats(events []schema.Event, phases []schema.Phase) schema.PhaseReport {
	groups, excluded := Partition(events, phases)
	report := schema.PhaseReport{Events: len(events), Excluded: excluded}
	for _, p := range phases {
		stats := schema.PhaseStats{Phase: p}
		group := groups[p.Name]
		brightness := make([]float64, len(group))
		velocity := make([]float64, len(group))
		for i, e := range group {
			brightness[i] = e.Brightness
			velocity[i] = e.Velocity
		}
		if s, err := Summarize(brightness); err == nil {
			stats.Brightness = s
		}
		if s, err := Summarize(velocity); err == nil {
			stats.Velocity = s
		}
		report.Phases = append(report.Phases, stats)
	}
	return report
}
