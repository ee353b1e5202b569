// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/internal/parquet"
	"github.com/huangsam/solarcorr/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteJoins prints joined records using the configured output format.
func (ow *OutWriter) WriteJoins(joins []schema.ParamJoin, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		if err := parquet.WriteJoinedParquet(parquet.ConvertJoins(joins), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet joined records to %s\n", cfg.OutputFile)
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteJoinResults(w, joins, cfg, duration)
	}, "Wrote joined records")
}

// WriteRegressions prints regression comparisons using the configured output format.
func (ow *OutWriter) WriteRegressions(reports []schema.RegressionReport, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		if err := parquet.WriteRegressionParquet(parquet.ConvertRegressions(reports), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet regressions to %s\n", cfg.OutputFile)
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRegressionResults(w, reports, cfg, duration)
	}, "Wrote regressions")
}

// WriteDescribe prints catalog summary statistics using the configured output format.
func (ow *OutWriter) WriteDescribe(report schema.DescribeReport, cfg *contract.Config) error {
	if err := rejectParquet(cfg, "describe"); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteDescribeResults(w, report, cfg)
	}, "Wrote summary")
}

// WritePhases prints solar-cycle phase statistics using the configured output format.
func (ow *OutWriter) WritePhases(report schema.PhaseReport, cfg *contract.Config) error {
	if err := rejectParquet(cfg, "phases"); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WritePhaseResults(w, report, cfg)
	}, "Wrote phase statistics")
}

// WriteSeries prints a series correlation using the configured output format.
func (ow *OutWriter) WriteSeries(report schema.SeriesReport, cfg *contract.Config) error {
	if err := rejectParquet(cfg, "ratio"); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSeriesResults(w, report, cfg)
	}, "Wrote series correlation")
}

func rejectParquet(cfg *contract.Config, command string) error {
	if cfg.Output == schema.ParquetOut {
		return fmt.Errorf("parquet output is not supported by %s; use text, csv or json", command)
	}
	return nil
}

// ResolveColors turns colors off unless the results go to an interactive terminal.
func ResolveColors(cfg *contract.Config) {
	if cfg.OutputFile != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.UseColors = false
	}
	color.NoColor = !cfg.UseColors
}
