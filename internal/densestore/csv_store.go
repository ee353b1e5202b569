package densestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/sirupsen/logrus"
)

// CSVStore reads dense series from a wide CSV file (optionally gzip) with one
// timestamp column and one column per parameter.
type CSVStore struct {
	path       string
	timeColumn string
	loc        *time.Location
	logger     logrus.FieldLogger
}

var _ contract.DenseSource = &CSVStore{} // Compile-time check

// NewCSVStore returns a store over the file at opts.Connect.
func NewCSVStore(opts Options) *CSVStore {
	opts = withDefaults(opts)
	return &CSVStore{
		path:       opts.Connect,
		timeColumn: opts.TimeColumn,
		loc:        opts.Location,
		logger:     opts.Logger,
	}
}

// LoadSeries implements contract.DenseSource. Empty and NULL cells are skipped.
func (s *CSVStore) LoadSeries(ctx context.Context, param string, start, end time.Time) (schema.DenseSeries, error) {
	f, err := contract.OpenInput(s.path)
	if err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to open dense CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to read dense CSV header: %w", err)
	}
	tsIdx, valIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, s.timeColumn):
			tsIdx = i
		case strings.EqualFold(name, param):
			valIdx = i
		}
	}
	if tsIdx < 0 || valIdx < 0 {
		return schema.DenseSeries{}, fmt.Errorf("dense CSV %s needs columns %q and %q", s.path, s.timeColumn, param)
	}

	var samples []schema.DenseSample
	skipped := 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return schema.DenseSeries{}, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return schema.DenseSeries{}, fmt.Errorf("failed to read dense CSV line %d: %w", line, err)
		}
		if tsIdx >= len(record) || valIdx >= len(record) {
			skipped++
			continue
		}
		raw := strings.TrimSpace(record[valIdx])
		if raw == "" || strings.EqualFold(raw, "null") {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			skipped++
			continue
		}
		ts, err := contract.ParseTimestamp(record[tsIdx], s.loc)
		if err != nil {
			skipped++
			continue
		}
		if inRange(ts, start, end) {
			samples = append(samples, schema.DenseSample{Timestamp: ts, Value: value})
		}
	}

	s.logger.WithFields(logrus.Fields{"backend": schema.CSVBackend, "param": param, "samples": len(samples), "skipped": skipped}).Debug("Loaded dense series")
	return buildSeries(param, samples)
}

// Close implements contract.DenseSource.
func (s *CSVStore) Close() error { return nil }
