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

// WriteJoinResults outputs the joined records, dispatching based on the output format configured.
func WriteJoinResults(w io.Writer, joins []schema.ParamJoin, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, joins); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForJoins(w, joins, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		for _, join := range joins {
			if err := writeJoinTable(w, join, cfg, fmtFloat, intFmt); err != nil {
				return fmt.Errorf("error writing join table: %w", err)
			}
		}
		if _, err := fmt.Fprintf(w, "Join completed in %v with %d workers. Dense backend: %s\n", duration, cfg.Workers, cfg.DenseBackend); err != nil {
			return err
		}
	}
	return nil
}

// writeJoinTable writes one parameter's joined records followed by its absent count.
func writeJoinTable(w io.Writer, join schema.ParamJoin, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if _, err := fmt.Fprintf(w, "%s (%s over ±%v)\n", join.Param, join.Aggregator, join.HalfWidth); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Timestamp", "Class", "Velocity", "CBI", join.Param, "Candidates"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range join.Records {
		value := absentLabel
		if r.Matched {
			value = fmtFloat(r.Value)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Event.Timestamp.Format(contract.DateTimeFormat),
			r.Event.FlareClass,
			fmtFloat(r.Event.Velocity),
			fmtFloat(r.Event.Brightness),
			value,
			fmt.Sprintf(intFmt, r.Candidates),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := join.Summary
	_, err := fmt.Fprintf(w, "Matched %d of %d events, %d absent\n\n", s.Matched, s.Total, s.Absent)
	return err
}

// writeCSVResultsForJoins writes one row per event and parameter; absent values are left empty.
func writeCSVResultsForJoins(w io.Writer, joins []schema.ParamJoin, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"param",
		"aggregator",
		"half_width",
		"timestamp",
		"flare_class",
		"velocity",
		"intensity",
		"brightness",
		"value",
		"matched",
		"candidates",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, join := range joins {
			for _, r := range join.Records {
				value := ""
				if r.Matched {
					value = fmtFloat(r.Value)
				}
				row := []string{
					join.Param,
					string(join.Aggregator),
					join.HalfWidth.String(),
					r.Event.Timestamp.Format(contract.DateTimeFormat),
					r.Event.FlareClass,
					fmtFloat(r.Event.Velocity),
					fmtFloat(r.Event.Intensity),
					fmtFloat(r.Event.Brightness),
					value,
					strconv.FormatBool(r.Matched),
					fmt.Sprintf(intFmt, r.Candidates),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
