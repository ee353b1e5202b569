// Package densestore loads dense magnetic-field parameter series from the supported backends.
package densestore

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/sirupsen/logrus"
)

// Options selects and configures a dense series backend.
type Options struct {
	Backend    schema.DatabaseBackend
	Connect    string
	Table      string
	TimeColumn string
	Location   *time.Location // Zone of naive timestamps in the store
	Logger     logrus.FieldLogger
}

// Open returns the DenseSource for the configured backend.
func Open(opts Options) (contract.DenseSource, error) {
	opts = withDefaults(opts)
	if err := contract.ValidateIdentifier("table", opts.Table); err != nil {
		return nil, err
	}
	if err := contract.ValidateIdentifier("column", opts.TimeColumn); err != nil {
		return nil, err
	}
	if err := contract.ValidateDatabaseConnectionString(opts.Backend, opts.Connect); err != nil {
		return nil, err
	}

	switch opts.Backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(opts)
	case schema.ClickHouseBackend:
		return NewClickHouseStore(opts)
	case schema.CSVBackend:
		return NewCSVStore(opts), nil
	default:
		return nil, fmt.Errorf("unsupported dense backend: %s. Must be sqlite, mysql, postgresql, clickhouse, or csv", opts.Backend)
	}
}

// OpenFromConfig opens the dense source described by a validated Config.
func OpenFromConfig(cfg *contract.Config) (contract.DenseSource, error) {
	return Open(Options{
		Backend:    cfg.DenseBackend,
		Connect:    cfg.DenseDBConnect,
		Table:      cfg.DenseTable,
		TimeColumn: cfg.TimeColumn,
		Location:   cfg.Location,
		Logger:     contract.Logger(),
	})
}

func withDefaults(opts Options) Options {
	if opts.Table == "" {
		opts.Table = schema.DefaultDenseTable
	}
	if opts.TimeColumn == "" {
		opts.TimeColumn = schema.DefaultTimeColumn
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = contract.Logger()
	}
	return opts
}

// inRange reports whether t falls inside [start, end]; zero bounds are open.
func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

// buildSeries drops NaN values and sorts the samples before validating them as a series.
func buildSeries(param string, samples []schema.DenseSample) (schema.DenseSeries, error) {
	kept := samples[:0]
	for _, s := range samples {
		if math.IsNaN(s.Value) {
			continue
		}
		kept = append(kept, s)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp.Before(kept[j].Timestamp)
	})
	return schema.NewDenseSeries(param, kept)
}
