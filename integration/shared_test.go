//go:build basic || database

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a solarcorr binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// fixtureBase is the hour of the first catalog event.
var fixtureBase = time.Date(2013, 5, 13, 0, 0, 0, 0, time.UTC)

// fixtureBrightness is the CBI of the five matched events. Regressed on
// MEANPOT values 1..5 it gives slope 0.6 and intercept 2.2.
var fixtureBrightness = []float64{2, 4, 5, 4, 5}

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the solarcorr binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "solarcorr-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "solarcorr")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build solarcorr: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runCommand runs the CLI and returns its stdout. Logs go to stderr and are
// only printed when the command fails.
func runCommand(t *testing.T, env []string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = t.TempDir() // Keep stray .solarcorr.yaml and .env files out of the run
	cmd.Env = append(os.Environ(), env...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), stderr.String())
	}
	require.NoError(t, err)
	return out
}

// writeCatalog writes five events one hour apart plus one event far from any sample.
func writeCatalog(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Corrected Velocity,Median Brightness,Cls\n")
	for i, cbi := range fixtureBrightness {
		ts := fixtureBase.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&b, "%s,%d,%g,M1.0\n", ts.Format(time.DateTime), 500+100*i, cbi)
	}
	fmt.Fprintf(&b, "%s,900,7,X1.0\n", fixtureBase.Add(100*time.Hour).Format(time.DateTime))

	path := filepath.Join(t.TempDir(), "cbi.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

// denseRows returns the MEANPOT samples aligned with the first five events.
func denseRows() []schema.DenseSample {
	rows := make([]schema.DenseSample, len(fixtureBrightness))
	for i := range rows {
		rows[i] = schema.DenseSample{Timestamp: fixtureBase.Add(time.Duration(i) * time.Hour), Value: float64(i + 1)}
	}
	return rows
}

// decodeRegressions parses the JSON output of the regress command.
func decodeRegressions(t *testing.T, out []byte) []schema.RegressionReport {
	t.Helper()
	var reports []schema.RegressionReport
	require.NoError(t, json.Unmarshal(out, &reports))
	return reports
}

// decodeJoins parses the JSON output of the join command.
func decodeJoins(t *testing.T, out []byte) []schema.ParamJoin {
	t.Helper()
	var joins []schema.ParamJoin
	require.NoError(t, json.Unmarshal(out, &joins))
	return joins
}
