package densestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

// sqlTimeLayout is how range bounds are passed to SQL backends.
const sqlTimeLayout = "2006-01-02 15:04:05"

// SQLStore reads dense series from SQLite, MySQL or PostgreSQL.
type SQLStore struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	table      string
	timeColumn string
	loc        *time.Location
	logger     logrus.FieldLogger
}

var _ contract.DenseSource = &SQLStore{} // Compile-time check

// NewSQLStore opens and pings the database behind opts.
func NewSQLStore(opts Options) (*SQLStore, error) {
	opts = withDefaults(opts)

	var db *sql.DB
	var err error

	switch opts.Backend {
	case schema.SQLiteBackend:
		db, err = sql.Open("sqlite", opts.Connect)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite dense store at %q: %w", opts.Connect, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", opts.Connect)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL dense store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", opts.Connect)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL dense store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported SQL backend: %s. Must be sqlite, mysql, or postgresql", opts.Backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", opts.Backend, err)
	}

	return &SQLStore{
		db:         db,
		backend:    opts.Backend,
		table:      opts.Table,
		timeColumn: opts.TimeColumn,
		loc:        opts.Location,
		logger:     opts.Logger,
	}, nil
}

// LoadSeries implements contract.DenseSource.
func (s *SQLStore) LoadSeries(ctx context.Context, param string, start, end time.Time) (schema.DenseSeries, error) {
	if err := contract.ValidateIdentifier("parameter", param); err != nil {
		return schema.DenseSeries{}, err
	}

	query, args := s.seriesQuery(param, start, end)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to query %s from %s: %w", param, s.table, err)
	}
	defer func() { _ = rows.Close() }()

	var samples []schema.DenseSample
	for rows.Next() {
		var raw any
		var value sql.NullFloat64
		if err := rows.Scan(&raw, &value); err != nil {
			return schema.DenseSeries{}, fmt.Errorf("failed to scan %s row: %w", param, err)
		}
		if !value.Valid {
			continue
		}
		ts, err := s.toTime(raw)
		if err != nil {
			return schema.DenseSeries{}, fmt.Errorf("failed to read %s timestamp: %w", s.timeColumn, err)
		}
		if !inRange(ts, start, end) {
			continue
		}
		samples = append(samples, schema.DenseSample{Timestamp: ts, Value: value.Float64})
	}
	if err := rows.Err(); err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to iterate %s rows: %w", param, err)
	}

	s.logger.WithFields(logrus.Fields{"backend": s.backend, "param": param, "samples": len(samples)}).Debug("Loaded dense series")
	return buildSeries(param, samples)
}

// Close implements contract.DenseSource.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// seriesQuery builds the ordered, non-null select for one parameter.
func (s *SQLStore) seriesQuery(param string, start, end time.Time) (string, []any) {
	ts := quoteIdentifier(s.timeColumn, s.backend)
	col := quoteIdentifier(param, s.backend)
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s IS NOT NULL`, ts, col, quoteIdentifier(s.table, s.backend), col)

	var args []any
	if !start.IsZero() {
		args = append(args, start.In(s.loc).Format(sqlTimeLayout))
		query += fmt.Sprintf(` AND %s >= %s`, ts, s.placeholder(len(args)))
	}
	if !end.IsZero() {
		args = append(args, end.In(s.loc).Format(sqlTimeLayout))
		query += fmt.Sprintf(` AND %s <= %s`, ts, s.placeholder(len(args)))
	}
	query += fmt.Sprintf(` ORDER BY %s`, ts)
	return query, args
}

// placeholder returns the n-th parameter placeholder for the backend.
func (s *SQLStore) placeholder(n int) string {
	switch s.backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("$%d", n)
	default: // SQLite and MySQL
		return "?"
	}
}

// toTime converts a scanned timestamp into an absolute UTC instant.
// Drivers hand back naive DATETIME values as UTC wall clocks, so those are
// reinterpreted in the store's zone.
func (s *SQLStore) toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.Location() != time.UTC {
			return v.UTC(), nil
		}
		return time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), s.loc).UTC(), nil
	case string:
		return contract.ParseTimestamp(v, s.loc)
	case []byte:
		return contract.ParseTimestamp(string(v), s.loc)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
	}
}

// quoteIdentifier quotes a validated table or column name for the backend.
func quoteIdentifier(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend, schema.ClickHouseBackend:
		return "`" + name + "`"
	default: // SQLite and PostgreSQL
		return `"` + name + `"`
	}
}
