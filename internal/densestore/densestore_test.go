package densestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

// newSQLiteFixture writes a small SHARP-like table into a temporary database file.
func newSQLiteFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swan.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE solar_flare_data ("Timestamp" DATETIME NOT NULL, MEANPOT REAL, TOTUSJZ REAL)`)
	require.NoError(t, err)
	rows := []struct {
		ts      string
		meanpot any
		totusjz any
	}{
		{"2012-03-07 00:12:00", 2.5, 10.0},
		{"2012-03-07 00:00:00", 1.5, nil},
		{"2012-03-07 00:24:00", nil, 30.0},
		{"2012-03-07 00:36:00", 4.0, 40.0},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO solar_flare_data ("Timestamp", MEANPOT, TOTUSJZ) VALUES (?, ?, ?)`, r.ts, r.meanpot, r.totusjz)
		require.NoError(t, err)
	}
	return path
}

func TestSQLStore_SQLite(t *testing.T) {
	path := newSQLiteFixture(t)
	store, err := Open(Options{Backend: schema.SQLiteBackend, Connect: path})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	series, err := store.LoadSeries(context.Background(), "MEANPOT", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "MEANPOT", series.Name())
	require.Equal(t, 3, series.Len())
	samples := series.Samples()
	assert.Equal(t, utc("2012-03-07 00:00:00"), samples[0].Timestamp)
	assert.Equal(t, 1.5, samples[0].Value)
	assert.Equal(t, utc("2012-03-07 00:36:00"), samples[2].Timestamp)
	assert.Equal(t, 4.0, samples[2].Value)
}

func TestSQLStore_SQLiteRange(t *testing.T) {
	path := newSQLiteFixture(t)
	store, err := Open(Options{Backend: schema.SQLiteBackend, Connect: path})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	series, err := store.LoadSeries(context.Background(), "TOTUSJZ", utc("2012-03-07 00:12:00"), utc("2012-03-07 00:24:00"))
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 10.0, series.Samples()[0].Value)
	assert.Equal(t, 30.0, series.Samples()[1].Value)
}

func TestSQLStore_SQLiteTimeZone(t *testing.T) {
	path := newSQLiteFixture(t)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store, err := Open(Options{Backend: schema.SQLiteBackend, Connect: path, Location: loc})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	series, err := store.LoadSeries(context.Background(), "MEANPOT", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, utc("2012-03-07 05:00:00"), series.Samples()[0].Timestamp)
}

func TestSQLStore_UnknownColumn(t *testing.T) {
	path := newSQLiteFixture(t)
	store, err := Open(Options{Backend: schema.SQLiteBackend, Connect: path})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.LoadSeries(context.Background(), "USFLUX", time.Time{}, time.Time{})
	assert.Error(t, err)

	_, err = store.LoadSeries(context.Background(), "MEANPOT; DROP TABLE x", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestSQLStore_SeriesQuery(t *testing.T) {
	start := utc("2012-01-01 00:00:00")
	end := utc("2012-12-31 00:00:00")

	tests := []struct {
		backend  schema.DatabaseBackend
		expected string
	}{
		{
			backend:  schema.SQLiteBackend,
			expected: `SELECT "Timestamp", "MEANPOT" FROM "solar_flare_data" WHERE "MEANPOT" IS NOT NULL AND "Timestamp" >= ? AND "Timestamp" <= ? ORDER BY "Timestamp"`,
		},
		{
			backend:  schema.MySQLBackend,
			expected: "SELECT `Timestamp`, `MEANPOT` FROM `solar_flare_data` WHERE `MEANPOT` IS NOT NULL AND `Timestamp` >= ? AND `Timestamp` <= ? ORDER BY `Timestamp`",
		},
		{
			backend:  schema.PostgreSQLBackend,
			expected: `SELECT "Timestamp", "MEANPOT" FROM "solar_flare_data" WHERE "MEANPOT" IS NOT NULL AND "Timestamp" >= $1 AND "Timestamp" <= $2 ORDER BY "Timestamp"`,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			s := &SQLStore{backend: tt.backend, table: schema.DefaultDenseTable, timeColumn: schema.DefaultTimeColumn, loc: time.UTC}
			query, args := s.seriesQuery("MEANPOT", start, end)
			assert.Equal(t, tt.expected, query)
			assert.Equal(t, []any{"2012-01-01 00:00:00", "2012-12-31 00:00:00"}, args)
		})
	}
}

func TestSQLStore_ToTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	s := &SQLStore{loc: loc}

	got, err := s.toTime(utc("2012-03-07 02:00:00"))
	require.NoError(t, err)
	assert.Equal(t, utc("2012-03-07 00:00:00"), got)

	got, err = s.toTime([]byte("2012-03-07 02:00:00"))
	require.NoError(t, err)
	assert.Equal(t, utc("2012-03-07 00:00:00"), got)

	got, err = s.toTime(time.Date(2012, 3, 7, 2, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, utc("2012-03-07 00:00:00"), got)

	got, err = s.toTime(int64(0))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), got)

	_, err = s.toTime(3.5)
	assert.Error(t, err)
}

func TestClickHouseStore_Query(t *testing.T) {
	store, err := NewClickHouseStore(Options{Backend: schema.ClickHouseBackend, Connect: "localhost:9000/swan"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", store.address)
	assert.Equal(t, "swan", store.database)

	query := store.seriesQuery("MEANPOT", time.Unix(100, 0), time.Unix(200, 0))
	assert.Equal(t, "SELECT toInt64(toUnixTimestamp(`Timestamp`)) AS t, toFloat64(`MEANPOT`) AS v FROM `solar_flare_data` WHERE `MEANPOT` IS NOT NULL AND `Timestamp` >= toDateTime(100) AND `Timestamp` <= toDateTime(200) ORDER BY `Timestamp`", query)

	assert.NoError(t, store.Close())
}

func TestParseClickHouseAddress(t *testing.T) {
	address, database, err := parseClickHouseAddress("127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", address)
	assert.Equal(t, "default", database)

	_, _, err = parseClickHouseAddress("localhost/swan")
	assert.Error(t, err)
}

const denseCSV = `Timestamp,MEANPOT,TOTUSJZ
2012-03-07 00:12:00,2.5,10
2012-03-07 00:00:00,1.5,
2012-03-07 00:24:00,NULL,30
not-a-date,9,9
2012-03-07 00:36:00,4,40
`

func TestCSVStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense.csv")
	require.NoError(t, os.WriteFile(path, []byte(denseCSV), 0o644))

	store, err := Open(Options{Backend: schema.CSVBackend, Connect: path})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	series, err := store.LoadSeries(context.Background(), "MEANPOT", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, []float64{1.5, 2.5, 4}, []float64{series.Samples()[0].Value, series.Samples()[1].Value, series.Samples()[2].Value})

	series, err = store.LoadSeries(context.Background(), "totusjz", utc("2012-03-07 00:20:00"), time.Time{})
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 30.0, series.Samples()[0].Value)

	_, err = store.LoadSeries(context.Background(), "USFLUX", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestCSVStore_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(denseCSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	store := NewCSVStore(Options{Connect: path})
	series, err := store.LoadSeries(context.Background(), "TOTUSJZ", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
}

func TestCSVStore_Canceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense.csv")
	require.NoError(t, os.WriteFile(path, []byte(denseCSV), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCSVStore(Options{Connect: path}).LoadSeries(ctx, "MEANPOT", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "unsupported backend", opts: Options{Backend: "oracle", Connect: "x"}},
		{name: "bad table", opts: Options{Backend: schema.SQLiteBackend, Connect: "x.db", Table: "solar-data"}},
		{name: "bad time column", opts: Options{Backend: schema.SQLiteBackend, Connect: "x.db", TimeColumn: "ts;"}},
		{name: "missing connect", opts: Options{Backend: schema.SQLiteBackend}},
		{name: "bad mysql dsn", opts: Options{Backend: schema.MySQLBackend, Connect: "root@localhost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestBuildSeries(t *testing.T) {
	series, err := buildSeries("p", []schema.DenseSample{
		{Timestamp: utc("2012-01-01 00:10:00"), Value: 2},
		{Timestamp: utc("2012-01-01 00:00:00"), Value: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, series.Samples()[0].Value)
}
