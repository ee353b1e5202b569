// Package core has the orchestration that wires sources, engines and writers together.
package core

import (
	"context"
	"time"

	"github.com/huangsam/solarcorr/internal/catalog"
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/internal/densestore"
	"github.com/huangsam/solarcorr/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing different analysis commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// newEventSource returns the catalog loader for the configured file.
func newEventSource(cfg *contract.Config) contract.EventSource {
	return &catalog.Loader{Path: cfg.CatalogPath, Location: cfg.Location, Logger: contract.Logger()}
}

// withDense opens the configured dense store for the duration of fn.
func withDense(cfg *contract.Config, fn func(contract.DenseSource) error) error {
	dense, err := densestore.OpenFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dense.Close(); err != nil {
			contract.LogWarn("Failed to close dense store", err)
		}
	}()
	return fn(dense)
}

// ExecuteJoin joins the catalog against the dense parameters and prints the records.
// It serves as the main entry point for the 'join' command.
func ExecuteJoin(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	return withDense(cfg, func(dense contract.DenseSource) error {
		joins, err := GetJoinResults(ctx, cfg, newEventSource(cfg), dense)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteJoins(joins, cfg, time.Since(start))
	})
}

// ExecuteRegress runs the manual and oracle regressions and prints both side by side.
// The dense store is only opened when a field needs the joined parameter.
func ExecuteRegress(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	run := func(dense contract.DenseSource) error {
		reports, err := GetRegressionResults(ctx, cfg, newEventSource(cfg), dense)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteRegressions(reports, cfg, time.Since(start))
	}
	if !needsDense(cfg) {
		return run(nil)
	}
	return withDense(cfg, run)
}

// ExecuteDescribe prints summary statistics of the catalog fields.
func ExecuteDescribe(ctx context.Context, cfg *contract.Config) error {
	report, err := GetDescribeResults(ctx, cfg, newEventSource(cfg))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDescribe(report, cfg)
}

// ExecutePhases prints per-phase statistics of the catalog.
func ExecutePhases(ctx context.Context, cfg *contract.Config) error {
	report, err := GetPhaseResults(ctx, cfg, newEventSource(cfg))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePhases(report, cfg)
}

// ExecuteRatio prints the correlation of a parameter ratio series.
func ExecuteRatio(ctx context.Context, cfg *contract.Config) error {
	return withDense(cfg, func(dense contract.DenseSource) error {
		report, err := GetRatioResults(ctx, cfg, newEventSource(cfg), dense)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteSeries(report, cfg)
	})
}
