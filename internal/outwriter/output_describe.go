package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// summaryHeader names the Summary columns shared by the describe and phase outputs.
var summaryHeader = []string{"N", "Mean", "Median", "Std", "SEM", "Mean-2SE", "Mean+2SE", "Min", "Max"}

func summaryCells(s schema.Summary, fmtFloat func(float64) string, intFmt string) []string {
	return []string{
		fmt.Sprintf(intFmt, s.N),
		fmtFloat(s.Mean),
		fmtFloat(s.Median),
		fmtFloat(s.Std),
		fmtFloat(s.SEM),
		fmtFloat(s.Lower2SE()),
		fmtFloat(s.Upper2SE()),
		fmtFloat(s.Min),
		fmtFloat(s.Max),
	}
}

// WriteDescribeResults outputs catalog summary statistics, dispatching based on the output format configured.
func WriteDescribeResults(w io.Writer, report schema.DescribeReport, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		header := append([]string{"field"}, summaryHeader...)
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, f := range report.Fields {
				if err := cw.Write(append([]string{string(f.Field)}, summaryCells(f.Summary, fmtFloat, intFmt)...)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if _, err := fmt.Fprintf(w, "Catalog: %d events\n", report.Events); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header(append([]string{"Field"}, summaryHeader...))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, f := range report.Fields {
		data = append(data, append([]string{string(f.Field)}, summaryCells(f.Summary, fmtFloat, intFmt)...))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if c := report.Correlation; c != nil {
		return writeCorrelationLine(w, *c, cfg, fmtFloat)
	}
	return nil
}

// WritePhaseResults outputs per-phase statistics, dispatching based on the output format configured.
func WritePhaseResults(w io.Writer, report schema.PhaseReport, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		header := []string{"phase", "start", "end", "field"}
		header = append(header, summaryHeader...)
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, p := range report.Phases {
				for _, fs := range phaseFields(p) {
					row := []string{p.Phase.Name, p.Phase.Start.Format(time.DateOnly), p.Phase.End.Format(time.DateOnly), string(fs.Field)}
					if err := cw.Write(append(row, summaryCells(fs.Summary, fmtFloat, intFmt)...)); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Phase", "Start", "End", "N", "CBI Mean", "CBI Median", "Velocity Mean", "Velocity Median"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range report.Phases {
		data = append(data, []string{
			p.Phase.Name,
			p.Phase.Start.Format(time.DateOnly),
			p.Phase.End.Format(time.DateOnly),
			fmt.Sprintf(intFmt, p.Brightness.N),
			fmtFloat(p.Brightness.Mean),
			fmtFloat(p.Brightness.Median),
			fmtFloat(p.Velocity.Mean),
			fmtFloat(p.Velocity.Median),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d events, %d outside every phase or non-positive\n", report.Events, report.Excluded)
	return err
}

func phaseFields(p schema.PhaseStats) []schema.FieldSummary {
	return []schema.FieldSummary{
		{Field: schema.CBIField, Summary: p.Brightness},
		{Field: schema.VelocityField, Summary: p.Velocity},
	}
}

// WriteSeriesResults outputs a series correlation, dispatching based on the output format configured.
func WriteSeriesResults(w io.Writer, report schema.SeriesReport, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		header := []string{"left", "right", "aligned", "dropped", "n", "r", "p_value", "significance"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			c := report.Correlation
			return cw.Write([]string{
				report.Left,
				report.Right,
				fmt.Sprintf(intFmt, report.Aligned),
				fmt.Sprintf(intFmt, report.Dropped),
				fmt.Sprintf(intFmt, c.N),
				fmtFloat(c.R),
				fmtFloat(c.PValue),
				contract.GetPlainLabel(c.PValue),
			})
		})
	}

	if _, err := fmt.Fprintf(w, "%s vs %s: %d aligned, %d dropped as non-finite\n", report.Left, report.Right, report.Aligned, report.Dropped); err != nil {
		return err
	}
	return writeCorrelationLine(w, report.Correlation, cfg, fmtFloat)
}

func writeCorrelationLine(w io.Writer, c schema.Correlation, cfg *contract.Config, fmtFloat func(float64) string) error {
	_, err := fmt.Fprintf(w, "Pearson r(%s, %s) = %s, p = %s, n = %d [%s]\n",
		c.X, c.Y, fmtFloat(c.R), fmtFloat(c.PValue), c.N, significance(c.PValue, cfg.UseColors))
	return err
}
