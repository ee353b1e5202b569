// Package parquet exports joined records and regression comparisons to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"github.com/parquet-go/parquet-go"
)

// JoinedRow is one event joined against one dense parameter.
type JoinedRow struct {
	// Param is the dense parameter name such as MEANPOT
	Param string `parquet:"param,snappy,dict"`

	// Aggregator is the rule that reduced the window
	Aggregator string `parquet:"aggregator,snappy,dict"`

	// HalfWidthSeconds is the window half-width in seconds
	HalfWidthSeconds int64 `parquet:"half_width_seconds,snappy"`

	// EventTime is the event instant (UTC)
	EventTime time.Time `parquet:"event_time,snappy"`

	Velocity   float64 `parquet:"velocity,snappy"`
	FlareClass string  `parquet:"flare_class,snappy"`
	Intensity  float64 `parquet:"intensity,snappy"`
	Brightness float64 `parquet:"brightness,snappy"`

	// Value is the aggregated dense value, null when no sample fell inside the window
	Value *float64 `parquet:"value,optional,snappy"`

	// Candidates is the number of samples inside the window
	Candidates int32 `parquet:"candidates,snappy"`
}

// RegressionRow flattens one manual-vs-oracle comparison.
type RegressionRow struct {
	X    string `parquet:"x,snappy"`
	Y    string `parquet:"y,snappy"`
	LogX bool   `parquet:"log_x"`
	N    int32  `parquet:"n,snappy"`

	ManualSlope     float64 `parquet:"manual_slope,snappy"`
	ManualIntercept float64 `parquet:"manual_intercept,snappy"`
	ManualR         float64 `parquet:"manual_r,snappy"`
	ManualPValue    float64 `parquet:"manual_p_value,snappy"`
	ManualStdErr    float64 `parquet:"manual_std_err,snappy"`

	OracleSlope     float64 `parquet:"oracle_slope,snappy"`
	OracleIntercept float64 `parquet:"oracle_intercept,snappy"`
	OracleR         float64 `parquet:"oracle_r,snappy"`
	OraclePValue    float64 `parquet:"oracle_p_value,snappy"`
	OracleStdErr    float64 `parquet:"oracle_std_err,snappy"`

	// Agree is true when every snapped delta is exactly zero
	Agree bool `parquet:"agree"`
}

// ConvertJoins flattens the joined records of every parameter into rows.
func ConvertJoins(joins []schema.ParamJoin) []JoinedRow {
	var rows []JoinedRow
	for _, j := range joins {
		for _, r := range j.Records {
			row := JoinedRow{
				Param:            j.Param,
				Aggregator:       string(j.Aggregator),
				HalfWidthSeconds: int64(j.HalfWidth / time.Second),
				EventTime:        r.Event.Timestamp,
				Velocity:         r.Event.Velocity,
				FlareClass:       r.Event.FlareClass,
				Intensity:        r.Event.Intensity,
				Brightness:       r.Event.Brightness,
				Candidates:       int32(r.Candidates),
			}
			if r.Matched {
				v := r.Value
				row.Value = &v
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ConvertRegressions flattens regression reports into rows.
func ConvertRegressions(reports []schema.RegressionReport) []RegressionRow {
	rows := make([]RegressionRow, 0, len(reports))
	for _, r := range reports {
		m, o := r.Comparison.Manual, r.Comparison.Oracle
		rows = append(rows, RegressionRow{
			X:               r.X,
			Y:               r.Y,
			LogX:            r.LogX,
			N:               int32(m.N),
			ManualSlope:     m.Slope,
			ManualIntercept: m.Intercept,
			ManualR:         m.R,
			ManualPValue:    m.PValue,
			ManualStdErr:    m.StdErr,
			OracleSlope:     o.Slope,
			OracleIntercept: o.Intercept,
			OracleR:         o.R,
			OraclePValue:    o.PValue,
			OracleStdErr:    o.StdErr,
			Agree:           r.Comparison.Agree,
		})
	}
	return rows
}

// WriteJoinedParquet writes joined rows to a Parquet file.
func WriteJoinedParquet(data []JoinedRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRegressionParquet writes regression rows to a Parquet file.
func WriteRegressionParquet(data []RegressionRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows creates outputPath and writes data with a schema inferred from T's struct tags.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
