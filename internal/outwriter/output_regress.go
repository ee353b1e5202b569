package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRegressionResults outputs manual-vs-oracle comparisons, dispatching based on the output format configured.
func WriteRegressionResults(w io.Writer, reports []schema.RegressionReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, reports); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForRegressions(w, reports, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		for _, report := range reports {
			if err := writeRegressionTable(w, report, cfg, fmtFloat); err != nil {
				return fmt.Errorf("error writing regression table: %w", err)
			}
		}
		if _, err := fmt.Fprintf(w, "Regression completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
			return err
		}
	}
	return nil
}

// writeRegressionTable prints both paths side by side with their snapped deltas.
func writeRegressionTable(w io.Writer, report schema.RegressionReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	x := report.X
	if report.LogX {
		x = "log10(" + x + ")"
	}
	c := report.Comparison
	if _, err := fmt.Fprintf(w, "%s ~ %s (n=%d)\n", report.Y, x, c.Manual.N); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Metric", "Manual", "Oracle", "Delta"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	m, o, d := c.Manual, c.Oracle, c.Delta
	data := [][]string{
		{"slope", fmtFloat(m.Slope), fmtFloat(o.Slope), fmtFloat(d.Slope)},
		{"intercept", fmtFloat(m.Intercept), fmtFloat(o.Intercept), fmtFloat(d.Intercept)},
		{"r", fmtFloat(m.R), fmtFloat(o.R), fmtFloat(d.R)},
		{"r²", fmtFloat(m.RSquared), fmtFloat(o.RSquared), fmtFloat(d.RSquared)},
		{"p-value", fmtFloat(m.PValue), fmtFloat(o.PValue), fmtFloat(d.PValue)},
		{"std err", fmtFloat(m.StdErr), fmtFloat(o.StdErr), fmtFloat(d.StdErr)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Agreement: %s, significance: %s\n", contract.GetAgreementLabel(c.Agree, cfg.UseColors), significance(o.PValue, cfg.UseColors)); err != nil {
		return err
	}
	if report.Join != nil {
		if _, err := fmt.Fprintf(w, "Join: %d of %d events matched, %d absent\n", report.Join.Matched, report.Join.Total, report.Join.Absent); err != nil {
			return err
		}
	}
	if report.Dropped > 0 {
		if _, err := fmt.Fprintf(w, "Dropped %d non-positive pairs before log10\n", report.Dropped); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// writeCSVResultsForRegressions writes one row per comparison.
func writeCSVResultsForRegressions(w io.Writer, reports []schema.RegressionReport, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"x", "y", "log_x", "n",
		"manual_slope", "manual_intercept", "manual_r", "manual_r_squared", "manual_p_value", "manual_std_err",
		"oracle_slope", "oracle_intercept", "oracle_r", "oracle_r_squared", "oracle_p_value", "oracle_std_err",
		"agree", "significance",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			m, o := r.Comparison.Manual, r.Comparison.Oracle
			row := []string{
				r.X, r.Y, strconv.FormatBool(r.LogX), fmt.Sprintf(intFmt, m.N),
				fmtFloat(m.Slope), fmtFloat(m.Intercept), fmtFloat(m.R), fmtFloat(m.RSquared), fmtFloat(m.PValue), fmtFloat(m.StdErr),
				fmtFloat(o.Slope), fmtFloat(o.Intercept), fmtFloat(o.R), fmtFloat(o.RSquared), fmtFloat(o.PValue), fmtFloat(o.StdErr),
				strconv.FormatBool(r.Comparison.Agree), contract.GetPlainLabel(o.PValue),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
