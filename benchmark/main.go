// Package main provides a performance benchmarking tool for the solarcorr CLI.
// It times the join and regress commands for every configured dense backend
// and worker count, running each test multiple times, treating the first
// successful run as cold and averaging the rest as warm, and writes the
// results to CSV for performance analysis and documentation.
//
// Prerequisites:
// - solarcorr binary installed and available in PATH
// - A CBI catalog and the SWAN-SF dense parameters as SQLite and/or CSV
//
// Usage: go run benchmark/main.go catalog.csv swan.db [swan.csv.gz]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark scenario (cold run and average of warm runs).
type BenchmarkResult struct {
	Backend  string
	Command  string
	Workers  int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Catalog   string
	Backends  map[string]string // backend -> dense-db-connect
	Params    string
	Timeout   time.Duration
	Runs      int
	Workers   []int
	Commands  []string
	HalfWidth string
}

func main() {
	if len(os.Args) < 3 || len(os.Args) > 4 {
		fmt.Printf("Usage: %s catalog.csv swan.db [swan.csv.gz]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Catalog:   os.Args[1],
		Backends:  map[string]string{"sqlite": os.Args[2]},
		Params:    "MEANPOT,TOTUSJZ,TOTBSQ,USFLUX",
		Timeout:   5 * time.Minute,
		Runs:      4,
		Workers:   []int{1, 4, 8},
		Commands:  []string{"join", "regress"},
		HalfWidth: "6 hours",
	}
	if len(os.Args) == 4 {
		config.Backends["csv"] = os.Args[3]
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the solarcorr binary and the input files exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("solarcorr"); err != nil {
		return errors.New("solarcorr binary not found in PATH")
	}

	paths := []string{config.Catalog}
	for _, conn := range config.Backends {
		paths = append(paths, conn)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input %s not found", path)
		}
	}
	return nil
}

// runBenchmarks executes every command for each backend and worker count
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d backends, %v timeout, workers %v, %d runs\n",
		len(config.Backends), config.Timeout, config.Workers, config.Runs)

	for backend, conn := range config.Backends {
		fmt.Printf("Benchmarking %s\n", backend)
		for _, command := range config.Commands {
			for _, workers := range config.Workers {
				results = append(results, runBenchmarkSuite(config, backend, conn, command, workers))
			}
		}
	}
	return results
}

// runBenchmarkSuite times one scenario and formats its cold and warm times
func runBenchmarkSuite(config BenchmarkConfig, backend, conn, command string, workers int) BenchmarkResult {
	fmt.Printf("Running %s on %s with %d workers\n", command, backend, workers)

	coldTime, warmTimes := runBenchmark(config, backend, conn, command, workers)

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmAvg := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Backend:  backend,
		Command:  command,
		Workers:  workers,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a solarcorr command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, backend, conn, command string, workers int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--catalog", config.Catalog,
		"--dense-backend", backend,
		"--dense-db-connect", conn,
		"--params", config.Params,
		"--half-width", config.HalfWidth,
		"--workers", strconv.Itoa(workers),
		"--color", "no",
	}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "solarcorr", args...).Output()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output, command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	completionPhrase := "Join completed in"
	if command == "regress" {
		completionPhrase = "Regression completed in"
	}
	outputStr := string(output)
	return strings.Contains(outputStr, completionPhrase) && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/solarcorr_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"backend", "cmd", "workers", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Backend, result.Command, strconv.Itoa(result.Workers), result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s workers=%-2d: Cold: %s, Warm: %s\n", result.Backend, result.Workers, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
