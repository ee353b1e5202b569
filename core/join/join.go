// Package join matches sparse catalog events against a dense parameter series.
package join

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// reducer folds the non-empty, time-ordered candidates of one window into one value.
type reducer func(candidates []schema.DenseSample) float64

var reducers = map[schema.Aggregator]reducer{
	schema.MaxAgg:    func(c []schema.DenseSample) float64 { return floats.Max(values(c)) },
	schema.MinAgg:    func(c []schema.DenseSample) float64 { return floats.Min(values(c)) },
	schema.MeanAgg:   func(c []schema.DenseSample) float64 { return stat.Mean(values(c), nil) },
	schema.FirstAgg:  func(c []schema.DenseSample) float64 { return c[0].Value },
	schema.LastAgg:   func(c []schema.DenseSample) float64 { return c[len(c)-1].Value },
	schema.MedianAgg: func(c []schema.DenseSample) float64 { return Median(values(c)) },
}

func values(samples []schema.DenseSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

// Median returns the middle value, averaging the two middle values for even lengths.
// It returns NaN for an empty slice and does not modify its input.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func validate(halfWidth time.Duration, agg schema.Aggregator) (reducer, error) {
	if halfWidth <= 0 {
		return nil, fmt.Errorf("half width %s: %w", halfWidth, schema.ErrInvalidWindow)
	}
	reduce, ok := reducers[agg]
	if !ok {
		return nil, fmt.Errorf("%q: %w", agg, schema.ErrUnknownAggregator)
	}
	return reduce, nil
}

func matchEvent(event schema.Event, dense schema.DenseSeries, halfWidth time.Duration, reduce reducer) schema.JoinedRecord {
	window := schema.MatchWindow{Center: event.Timestamp, HalfWidth: halfWidth}
	candidates := dense.Range(window.Start(), window.End())
	record := schema.JoinedRecord{Event: event, Candidates: len(candidates)}
	if len(candidates) > 0 {
		record.Value = reduce(candidates)
		record.Matched = true
	}
	return record
}

// Match joins every event with the aggregate of the dense samples inside its
// closed window [t - halfWidth, t + halfWidth]. Events without candidates are
// kept as absent records. Output order equals input order.
func Match(events []schema.Event, dense schema.DenseSeries, halfWidth time.Duration, agg schema.Aggregator) ([]schema.JoinedRecord, error) {
	reduce, err := validate(halfWidth, agg)
	if err != nil {
		return nil, err
	}
	records := make([]schema.JoinedRecord, len(events))
	for i, event := range events {
		records[i] = matchEvent(event, dense, halfWidth, reduce)
	}
	return records, nil
}

// MatchOne joins a single event and returns ErrEmptyWindow when nothing falls inside its window.
func MatchOne(event schema.Event, dense schema.DenseSeries, halfWidth time.Duration, agg schema.Aggregator) (schema.JoinedRecord, error) {
	reduce, err := validate(halfWidth, agg)
	if err != nil {
		return schema.JoinedRecord{}, err
	}
	record := matchEvent(event, dense, halfWidth, reduce)
	if !record.Matched {
		return record, fmt.Errorf("%s %s: %w", dense.Name(), event.Timestamp.Format(time.RFC3339), schema.ErrEmptyWindow)
	}
	return record, nil
}

// Summarize counts matched and absent records.
func Summarize(records []schema.JoinedRecord) schema.JoinSummary {
	summary := schema.JoinSummary{Total: len(records)}
	for _, r := range records {
		if r.Matched {
			summary.Matched++
		} else {
			summary.Absent++
		}
	}
	return summary
}

// Pairs extracts (xOf(event), value) for every matched record, skipping absent ones.
func Pairs(records []schema.JoinedRecord, xOf func(schema.Event) float64) (x, y []float64) {
	for _, r := range records {
		if !r.Matched {
			continue
		}
		x = append(x, xOf(r.Event))
		y = append(y, r.Value)
	}
	return x, y
}

// Job is one independent join of the same catalog against one dense parameter.
type Job struct {
	Events     []schema.Event
	Series     schema.DenseSeries
	HalfWidth  time.Duration
	Aggregator schema.Aggregator
}

// MatchAll runs jobs concurrently with at most workers in flight.
// Results keep the order of jobs; the first failing job cancels the rest.
func MatchAll(ctx context.Context, jobs []Job, workers int) ([]schema.ParamJoin, error) {
	results := make([]schema.ParamJoin, len(jobs))
	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, job := range jobs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			records, err := Match(job.Events, job.Series, job.HalfWidth, job.Aggregator)
			if err != nil {
				return fmt.Errorf("join %s: %w", job.Series.Name(), err)
			}
			results[i] = schema.ParamJoin{
				Param:      job.Series.Name(),
				Aggregator: job.Aggregator,
				HalfWidth:  job.HalfWidth,
				Records:    records,
				Summary:    Summarize(records),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
