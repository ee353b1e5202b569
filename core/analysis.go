package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/solarcorr/core/describe"
	"github.com/huangsam/solarcorr/core/join"
	"github.com/huangsam/solarcorr/core/regress"
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/sirupsen/logrus"
)

// ErrNoEvents is returned when the catalog yields nothing to analyze.
var ErrNoEvents = errors.New("no events left after filtering the catalog")

// logAnalysisHeader prints the settings of a run unless the context suppresses it.
func logAnalysisHeader(ctx context.Context, command string, cfg *contract.Config) {
	if shouldSuppressHeader(ctx) {
		return
	}
	contract.Logger().WithFields(logrus.Fields{
		"command":    command,
		"catalog":    cfg.CatalogPath,
		"backend":    cfg.DenseBackend,
		"aggregator": cfg.Aggregator,
		"half_width": cfg.HalfWidth,
		"params":     strings.Join(cfg.Params, ","),
	}).Info("Starting analysis")
}

// loadEvents loads the catalog and logs what the filter removed.
func loadEvents(ctx context.Context, events contract.EventSource) ([]schema.Event, error) {
	loaded, stats, err := events.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	contract.Logger().WithFields(logrus.Fields{
		"rows":     stats.Rows,
		"events":   len(loaded),
		"filtered": stats.Filtered,
		"invalid":  stats.Invalid,
	}).Info("Loaded catalog")
	if len(loaded) == 0 {
		return nil, ErrNoEvents
	}
	return loaded, nil
}

// loadSeries loads one dense parameter over the configured time range.
func loadSeries(ctx context.Context, cfg *contract.Config, dense contract.DenseSource, param string) (schema.DenseSeries, error) {
	series, err := dense.LoadSeries(ctx, param, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return schema.DenseSeries{}, fmt.Errorf("failed to load %s: %w", param, err)
	}
	if series.Len() == 0 {
		contract.Logger().WithField("param", param).Warn("Dense series is empty; every event will be absent")
	}
	return series, nil
}

// GetJoinResults joins the catalog against every configured parameter.
func GetJoinResults(ctx context.Context, cfg *contract.Config, events contract.EventSource, dense contract.DenseSource) ([]schema.ParamJoin, error) {
	logAnalysisHeader(ctx, "join", cfg)
	if len(cfg.Params) == 0 {
		return nil, errors.New("no dense parameters configured (use --params)")
	}

	loaded, err := loadEvents(ctx, events)
	if err != nil {
		return nil, err
	}

	jobs := make([]join.Job, 0, len(cfg.Params))
	for _, param := range cfg.Params {
		series, err := loadSeries(ctx, cfg, dense, param)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, join.Job{
			Events:     loaded,
			Series:     series,
			HalfWidth:  cfg.HalfWidth,
			Aggregator: cfg.Aggregator,
		})
	}

	joins, err := join.MatchAll(ctx, jobs, cfg.Workers)
	if err != nil {
		return nil, err
	}
	for _, j := range joins {
		logger := contract.Logger().WithFields(logrus.Fields{
			"param":   j.Param,
			"matched": j.Summary.Matched,
			"absent":  j.Summary.Absent,
		})
		if j.Summary.Absent > 0 {
			logger.Warn("Some events had no dense samples in their window")
		} else {
			logger.Info("Joined events")
		}
	}
	return joins, nil
}

// fieldValue reads a catalog field from an event.
func fieldValue(e schema.Event, f schema.Field) float64 {
	switch f {
	case schema.VelocityField:
		return e.Velocity
	case schema.IntensityField:
		return e.Intensity
	default:
		return e.Brightness
	}
}

// fieldValues reads one catalog field from every event.
func fieldValues(events []schema.Event, f schema.Field) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = fieldValue(e, f)
	}
	return out
}

// regressionReport optionally applies log10 to x and runs the dual-path comparison.
func regressionReport(xName, yName string, x, y []float64, logX bool) (schema.RegressionReport, error) {
	report := schema.RegressionReport{X: xName, Y: yName, LogX: logX}
	if logX {
		if len(x) != len(y) {
			return report, fmt.Errorf("len(x)=%d len(y)=%d: %w", len(x), len(y), schema.ErrLengthMismatch)
		}
		x, y, report.Dropped = describe.Log10(x, y)
	}
	comparison, err := regress.Compare(x, y)
	if err != nil {
		return report, err
	}
	report.Comparison = comparison
	return report, nil
}

// GetRegressionResults regresses cfg.Y on cfg.X. When either field is the joined
// parameter, one report is produced per configured parameter from its matched records.
func GetRegressionResults(ctx context.Context, cfg *contract.Config, events contract.EventSource, dense contract.DenseSource) ([]schema.RegressionReport, error) {
	if !needsDense(cfg) {
		logAnalysisHeader(ctx, "regress", cfg)
		loaded, err := loadEvents(ctx, events)
		if err != nil {
			return nil, err
		}
		report, err := regressionReport(string(cfg.X), string(cfg.Y), fieldValues(loaded, cfg.X), fieldValues(loaded, cfg.Y), cfg.LogX)
		if err != nil {
			return nil, fmt.Errorf("regression %s ~ %s: %w", cfg.Y, cfg.X, err)
		}
		return []schema.RegressionReport{report}, nil
	}

	joins, err := GetJoinResults(ctx, cfg, events, dense)
	if err != nil {
		return nil, err
	}

	reports := make([]schema.RegressionReport, 0, len(joins))
	for _, j := range joins {
		var x, y []float64
		xName, yName := string(cfg.X), string(cfg.Y)
		if cfg.X == schema.ParamField {
			y, x = join.Pairs(j.Records, func(e schema.Event) float64 { return fieldValue(e, cfg.Y) })
			xName = j.Param
		} else {
			x, y = join.Pairs(j.Records, func(e schema.Event) float64 { return fieldValue(e, cfg.X) })
			yName = j.Param
		}

		report, err := regressionReport(xName, yName, x, y, cfg.LogX)
		if err != nil {
			return nil, fmt.Errorf("regression %s ~ %s: %w", yName, xName, err)
		}
		summary := j.Summary
		report.Join = &summary
		reports = append(reports, report)
	}
	return reports, nil
}

// GetDescribeResults summarizes the catalog fields and correlates cfg.X with cfg.Y,
// or velocity with CBI when either of them is the joined parameter.
func GetDescribeResults(ctx context.Context, cfg *contract.Config, events contract.EventSource) (schema.DescribeReport, error) {
	logAnalysisHeader(ctx, "describe", cfg)
	loaded, err := loadEvents(ctx, events)
	if err != nil {
		return schema.DescribeReport{}, err
	}

	report := schema.DescribeReport{Events: len(loaded)}
	for _, f := range []schema.Field{schema.CBIField, schema.VelocityField, schema.IntensityField} {
		summary, err := describe.Summarize(fieldValues(loaded, f))
		if err != nil {
			return schema.DescribeReport{}, fmt.Errorf("summarize %s: %w", f, err)
		}
		report.Fields = append(report.Fields, schema.FieldSummary{Field: f, Summary: summary})
	}

	xField, yField := cfg.X, cfg.Y
	if xField == schema.ParamField || yField == schema.ParamField {
		xField, yField = schema.VelocityField, schema.CBIField
	}
	x, y := fieldValues(loaded, xField), fieldValues(loaded, yField)
	r, p, err := describe.Pearson(x, y)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Skipping correlation of %s and %s", xField, yField), err)
		return report, nil
	}
	report.Correlation = &schema.Correlation{X: string(xField), Y: string(yField), N: len(x), R: r, PValue: p}
	return report, nil
}

// GetPhaseResults partitions the catalog into the configured solar-cycle phases.
func GetPhaseResults(ctx context.Context, cfg *contract.Config, events contract.EventSource) (schema.PhaseReport, error) {
	logAnalysisHeader(ctx, "phases", cfg)
	loaded, err := loadEvents(ctx, events)
	if err != nil {
		return schema.PhaseReport{}, err
	}
	return describe.PhaseStats(loaded, cfg.Phases), nil
}

// GetRatioResults builds the Numerator/Denominator series and correlates it with the
// Against parameter on shared timestamps, or with CBI through the join when Against is empty.
func GetRatioResults(ctx context.Context, cfg *contract.Config, events contract.EventSource, dense contract.DenseSource) (schema.SeriesReport, error) {
	logAnalysisHeader(ctx, "ratio", cfg)
	if cfg.Numerator == "" || cfg.Denominator == "" {
		return schema.SeriesReport{}, errors.New("ratio needs both --numerator and --denominator")
	}

	num, err := loadSeries(ctx, cfg, dense, cfg.Numerator)
	if err != nil {
		return schema.SeriesReport{}, err
	}
	den, err := loadSeries(ctx, cfg, dense, cfg.Denominator)
	if err != nil {
		return schema.SeriesReport{}, err
	}
	name := cfg.Numerator + "/" + cfg.Denominator
	ratio, dropped, err := describe.Ratio(name, num.Samples(), den.Samples())
	if err != nil {
		return schema.SeriesReport{}, err
	}
	contract.Logger().WithFields(logrus.Fields{"ratio": name, "samples": ratio.Len(), "dropped": dropped}).Info("Built ratio series")

	report := schema.SeriesReport{Left: name, Dropped: dropped}
	var x, y []float64
	if cfg.Against != "" {
		against, err := loadSeries(ctx, cfg, dense, cfg.Against)
		if err != nil {
			return schema.SeriesReport{}, err
		}
		report.Right = cfg.Against
		x, y = describe.Align(ratio.Samples(), against.Samples())
	} else {
		loaded, err := loadEvents(ctx, events)
		if err != nil {
			return schema.SeriesReport{}, err
		}
		records, err := join.Match(loaded, ratio, cfg.HalfWidth, cfg.Aggregator)
		if err != nil {
			return schema.SeriesReport{}, err
		}
		report.Right = string(schema.CBIField)
		y, x = join.Pairs(records, func(e schema.Event) float64 { return e.Brightness })
	}
	report.Aligned = len(x)

	r, p, err := describe.Pearson(x, y)
	if err != nil {
		return schema.SeriesReport{}, fmt.Errorf("correlation %s ~ %s: %w", report.Right, name, err)
	}
	report.Correlation = schema.Correlation{X: name, Y: report.Right, N: len(x), R: r, PValue: p}
	return report, nil
}

// needsDense reports whether a regression reads the joined parameter.
func needsDense(cfg *contract.Config) bool {
	return cfg.X == schema.ParamField || cfg.Y == schema.ParamField
}
