// Package schema has configs, models and error kinds for all parts of solarcorr.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Event represents one entry of the CBI event catalog.
// Events are immutable once loaded; Velocity and Intensity are NaN-free
// after the catalog applies its Velocity > 0 filter.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`   // Absolute instant of the event (UTC)
	Velocity   float64   `json:"velocity"`    // Corrected CME velocity in km/s
	FlareClass string    `json:"flare_class"` // GOES flare class such as M5.0 or X2.1
	Intensity  float64   `json:"intensity"`   // Numeric intensity derived from FlareClass
	Brightness float64   `json:"brightness"`  // Median coronal brightness (CBI)
}

// DenseSample is one reading of a densely sampled magnetic-field parameter.
type DenseSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// DenseSeries is a named, time-ordered sequence of dense samples.
// It can only be built through NewDenseSeries so Range may rely on the ordering.
type DenseSeries struct {
	name    string
	samples []DenseSample
}

// NewDenseSeries validates that samples are non-decreasing in time and free of NaN.
// The slice is copied so later mutation by the caller cannot break the ordering.
func NewDenseSeries(name string, samples []DenseSample) (DenseSeries, error) {
	copied := make([]DenseSample, len(samples))
	copy(copied, samples)
	for i, s := range copied {
		if math.IsNaN(s.Value) {
			return DenseSeries{}, fmt.Errorf("%s sample %d at %s: %w", name, i, s.Timestamp.Format(time.RFC3339), ErrNaNSample)
		}
		if i > 0 && s.Timestamp.Before(copied[i-1].Timestamp) {
			return DenseSeries{}, fmt.Errorf("%s sample %d at %s: %w", name, i, s.Timestamp.Format(time.RFC3339), ErrUnorderedSeries)
		}
	}
	return DenseSeries{name: name, samples: copied}, nil
}

// Name returns the parameter name of the series (e.g. MEANPOT).
func (d DenseSeries) Name() string { return d.name }

// Len returns the number of samples.
func (d DenseSeries) Len() int { return len(d.samples) }

// Samples returns the ordered samples. Callers must not modify the result.
func (d DenseSeries) Samples() []DenseSample { return d.samples }

// Range returns the samples whose timestamp lies in [lo, hi], both ends inclusive.
// Bracketing uses two binary searches, so the cost is O(log M) plus the size of the result.
func (d DenseSeries) Range(lo, hi time.Time) []DenseSample {
	if hi.Before(lo) {
		return nil
	}
	start := sort.Search(len(d.samples), func(i int) bool {
		return !d.samples[i].Timestamp.Before(lo)
	})
	end := sort.Search(len(d.samples), func(i int) bool {
		return d.samples[i].Timestamp.After(hi)
	})
	if start >= end {
		return nil
	}
	return d.samples[start:end]
}

// MatchWindow is the closed interval [Center - HalfWidth, Center + HalfWidth].
type MatchWindow struct {
	Center    time.Time
	HalfWidth time.Duration
}

// Start returns the inclusive lower bound.
func (w MatchWindow) Start() time.Time { return w.Center.Add(-w.HalfWidth) }

// End returns the inclusive upper bound.
func (w MatchWindow) End() time.Time { return w.Center.Add(w.HalfWidth) }

// Contains reports whether t falls inside the window, boundaries included.
func (w MatchWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && !t.After(w.End())
}

// JoinedRecord pairs an event with the aggregated dense value of its window.
// Matched == false is the absent state: no sample fell inside the window and Value must not be read.
type JoinedRecord struct {
	Event      Event   `json:"event"`
	Value      float64 `json:"value"`
	Matched    bool    `json:"matched"`
	Candidates int     `json:"candidates"` // Number of samples inside the window
}

// joinedRecordJSON is the wire form of JoinedRecord; absent records carry a null value.
type joinedRecordJSON struct {
	Event      Event    `json:"event"`
	Value      *float64 `json:"value"`
	Matched    bool     `json:"matched"`
	Candidates int      `json:"candidates"`
}

// MarshalJSON writes value as null for absent records so they never read as zero.
func (r JoinedRecord) MarshalJSON() ([]byte, error) {
	wire := joinedRecordJSON{Event: r.Event, Matched: r.Matched, Candidates: r.Candidates}
	if r.Matched {
		v := r.Value
		wire.Value = &v
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reads the wire form written by MarshalJSON.
func (r *JoinedRecord) UnmarshalJSON(data []byte) error {
	var wire joinedRecordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = JoinedRecord{Event: wire.Event, Matched: wire.Matched, Candidates: wire.Candidates}
	if wire.Value != nil {
		r.Value = *wire.Value
	}
	return nil
}

// JoinSummary keeps absent records observable after they are dropped from statistics.
type JoinSummary struct {
	Total   int `json:"total"`
	Matched int `json:"matched"`
	Absent  int `json:"absent"`
}

// ParamJoin holds the joined records of one dense parameter.
type ParamJoin struct {
	Param      string         `json:"param"`
	Aggregator Aggregator     `json:"aggregator"`
	HalfWidth  time.Duration  `json:"half_width"`
	Records    []JoinedRecord `json:"records"`
	Summary    JoinSummary    `json:"summary"`
}
