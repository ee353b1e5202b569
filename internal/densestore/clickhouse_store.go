package densestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/sirupsen/logrus"
)

// ClickHouseStore reads dense series over the ClickHouse native protocol.
// A connection is dialed per query, so the store itself holds no socket.
type ClickHouseStore struct {
	address    string
	database   string
	table      string
	timeColumn string
	logger     logrus.FieldLogger
}

var _ contract.DenseSource = &ClickHouseStore{} // Compile-time check

// NewClickHouseStore parses "host:port[/database]" into a store.
func NewClickHouseStore(opts Options) (*ClickHouseStore, error) {
	opts = withDefaults(opts)
	address, database, err := parseClickHouseAddress(opts.Connect)
	if err != nil {
		return nil, err
	}
	return &ClickHouseStore{
		address:    address,
		database:   database,
		table:      opts.Table,
		timeColumn: opts.TimeColumn,
		logger:     opts.Logger,
	}, nil
}

func parseClickHouseAddress(connStr string) (address, database string, err error) {
	address, database, _ = strings.Cut(strings.TrimSpace(connStr), "/")
	if !strings.Contains(address, ":") {
		return "", "", fmt.Errorf("ClickHouse address must be host:port, got %q", connStr)
	}
	if database == "" {
		database = "default"
	}
	return address, database, nil
}

// LoadSeries implements contract.DenseSource.
func (s *ClickHouseStore) LoadSeries(ctx context.Context, param string, start, end time.Time) (schema.DenseSeries, error) {
	if err := contract.ValidateIdentifier("parameter", param); err != nil {
		return schema.DenseSeries{}, err
	}

	conn, err := ch.Dial(ctx, ch.Options{
		Address:     s.address,
		Database:    s.database,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to connect to ClickHouse at %s: %w", s.address, err)
	}
	defer func() { _ = conn.Close() }()

	var (
		colT    proto.ColInt64
		colV    proto.ColFloat64
		samples []schema.DenseSample
	)
	if err := conn.Do(ctx, ch.Query{
		Body: s.seriesQuery(param, start, end),
		Result: proto.Results{
			{Name: "t", Data: &colT},
			{Name: "v", Data: &colV},
		},
		OnResult: func(ctx context.Context, block proto.Block) error {
			for i := 0; i < colT.Rows(); i++ {
				samples = append(samples, schema.DenseSample{
					Timestamp: time.Unix(colT.Row(i), 0).UTC(),
					Value:     colV.Row(i),
				})
			}
			return nil
		},
	}); err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to query %s from %s: %w", param, s.table, err)
	}

	s.logger.WithFields(logrus.Fields{"backend": schema.ClickHouseBackend, "param": param, "samples": len(samples)}).Debug("Loaded dense series")
	return buildSeries(param, samples)
}

// Close implements contract.DenseSource.
func (s *ClickHouseStore) Close() error { return nil }

// seriesQuery selects epoch seconds and the parameter as Float64 under the t and v aliases.
func (s *ClickHouseStore) seriesQuery(param string, start, end time.Time) string {
	ts := quoteIdentifier(s.timeColumn, schema.ClickHouseBackend)
	col := quoteIdentifier(param, schema.ClickHouseBackend)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT toInt64(toUnixTimestamp(%s)) AS t, toFloat64(%s) AS v FROM %s WHERE %s IS NOT NULL",
		ts, col, quoteIdentifier(s.table, schema.ClickHouseBackend), col)
	if !start.IsZero() {
		fmt.Fprintf(&b, " AND %s >= toDateTime(%d)", ts, start.Unix())
	}
	if !end.IsZero() {
		fmt.Fprintf(&b, " AND %s <= toDateTime(%d)", ts, end.Unix())
	}
	fmt.Fprintf(&b, " ORDER BY %s", ts)
	return b.String()
}
