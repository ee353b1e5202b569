package join

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/solarcorr/schema"
)

// FuzzMatch fuzzes Match with arbitrary offsets, widths and aggregators.
func FuzzMatch(f *testing.F) {
	f.Add([]byte{0, 10, 10, 20}, int64(5), int64(6), "max")
	f.Add([]byte{0, 10, 10, 20}, int64(100), int64(1), "first")
	f.Add([]byte{}, int64(0), int64(1), "mean")
	f.Add([]byte{5, 5, 5, 5}, int64(5), int64(0), "median")

	f.Fuzz(func(t *testing.T, raw []byte, center, width int64, agg string) {
		samples := make([]schema.DenseSample, 0, len(raw)/2)
		m := 0
		for i := 0; i+1 < len(raw); i += 2 {
			m += int(raw[i])
			samples = append(samples, schema.DenseSample{Timestamp: at(m), Value: float64(raw[i+1]) - 128})
		}
		dense, err := schema.NewDenseSeries("fuzz", samples)
		if err != nil {
			t.Fatalf("ordered input rejected: %v", err)
		}

		hw := time.Duration(width%10000) * time.Minute
		events := []schema.Event{event(int(center % 100000))}
		records, err := Match(events, dense, hw, schema.Aggregator(agg))
		if err != nil {
			return
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		r := records[0]
		if r.Matched != (r.Candidates > 0) {
			t.Fatalf("matched=%v with %d candidates", r.Matched, r.Candidates)
		}
		if r.Matched && math.IsNaN(r.Value) {
			t.Fatalf("matched record has NaN value")
		}
	})
}
