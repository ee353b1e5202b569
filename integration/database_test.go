//go:build database

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/solarcorr/internal/densestore"
	"github.com/huangsam/solarcorr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// seedDense creates the dense table and inserts the fixture rows plus one NULL.
func seedDense(t *testing.T, db *sql.DB, createStmt, insertStmt string) {
	t.Helper()
	_, err := db.Exec(createStmt)
	require.NoError(t, err)
	for _, row := range denseRows() {
		_, err := db.Exec(insertStmt, row.Timestamp.Format(time.DateTime), row.Value)
		require.NoError(t, err)
	}
	_, err = db.Exec(insertStmt, fixtureBase.Add(30*time.Minute).Format(time.DateTime), nil)
	require.NoError(t, err)
}

// assertWorkedExample checks the store and the CLI against the seeded database.
func assertWorkedExample(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()
	ctx := context.Background()

	store, err := densestore.Open(densestore.Options{Backend: backend, Connect: connStr})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	series, err := store.LoadSeries(ctx, "MEANPOT", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, len(fixtureBrightness), series.Len())
	assert.Equal(t, fixtureBase, series.Samples()[0].Timestamp)

	env := []string{
		"SOLARCORR_DENSE_BACKEND=" + string(backend),
		"SOLARCORR_DENSE_DB_CONNECT=" + connStr,
	}
	catalogPath := writeCatalog(t)

	joins := decodeJoins(t, runCommand(t, env, "join", "--catalog", catalogPath, "--half-width", "10m", "--output", "json"))
	require.Len(t, joins, 1)
	assert.Equal(t, schema.JoinSummary{Total: 6, Matched: 5, Absent: 1}, joins[0].Summary)

	reports := decodeRegressions(t, runCommand(t, env, "regress", "--catalog", catalogPath, "--half-width", "10m", "--output", "json"))
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Comparison.Agree)
	assert.InDelta(t, 0.6, reports[0].Comparison.Manual.Slope, 1e-9)
	assert.InDelta(t, 2.2, reports[0].Comparison.Oracle.Intercept, 1e-9)
}

// TestDenseStoreWithMySQL loads a dense series from a MySQL backend.
func TestDenseStoreWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "swan",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/swan?parseTime=true", host, port.Port())

	db, err := sql.Open("mysql", connStr)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	seedDense(t, db,
		"CREATE TABLE solar_flare_data (`Timestamp` DATETIME NOT NULL, MEANPOT DOUBLE NULL)",
		"INSERT INTO solar_flare_data (`Timestamp`, MEANPOT) VALUES (?, ?)")

	assertWorkedExample(t, schema.MySQLBackend, connStr)
}

// TestDenseStoreWithPostgres loads a dense series from a PostgreSQL backend.
func TestDenseStoreWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	seedDense(t, db,
		`CREATE TABLE "solar_flare_data" ("Timestamp" TIMESTAMP NOT NULL, "MEANPOT" DOUBLE PRECISION NULL)`,
		`INSERT INTO "solar_flare_data" ("Timestamp", "MEANPOT") VALUES ($1, $2)`)

	assertWorkedExample(t, schema.PostgreSQLBackend, connStr)
}
