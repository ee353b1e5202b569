// Package catalog reads the CBI event catalog from CSV files.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/sirupsen/logrus"
)

// Catalog column headers.
const (
	DateHeader       = "Date"
	VelocityHeader   = "Corrected Velocity"
	BrightnessHeader = "Median Brightness"
	ClassHeader      = "Cls"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing catalog column")

// ParseFlareClass converts a GOES class such as M5.0 into an intensity.
// X-class flares are scaled by 10 so that X2.1 becomes 21.
func ParseFlareClass(class string) (float64, error) {
	class = strings.TrimSpace(class)
	if len(class) < 2 {
		return 0, fmt.Errorf("invalid flare class %q", class)
	}
	mult := 1.0
	if class[0] == 'X' || class[0] == 'x' {
		mult = 10.0
	}
	v, err := strconv.ParseFloat(class[1:], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid flare class %q", class)
	}
	return mult * v, nil
}

// Loader reads a catalog file and implements contract.EventSource.
type Loader struct {
	Path     string
	Location *time.Location // Zone of naive Date values
	Logger   logrus.FieldLogger
}

var _ contract.EventSource = &Loader{} // Compile-time check

// LoadEvents opens the catalog, decompressing .gz files, and parses it.
func (l *Loader) LoadEvents(ctx context.Context) ([]schema.Event, contract.CatalogStats, error) {
	r, err := contract.OpenInput(l.Path)
	if err != nil {
		return nil, contract.CatalogStats{}, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = r.Close() }()

	events, stats, err := Read(ctx, r, l.Location)
	if err != nil {
		return nil, stats, fmt.Errorf("read catalog %s: %w", l.Path, err)
	}
	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{"path": l.Path, "rows": stats.Rows}).Debug("Read catalog file")
	}
	return events, stats, nil
}

// Read parses catalog rows from r. Rows with Velocity <= 0 are filtered and
// rows with unparseable fields are skipped; both are counted in the stats.
func Read(ctx context.Context, r io.Reader, loc *time.Location) ([]schema.Event, contract.CatalogStats, error) {
	var stats contract.CatalogStats
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, stats, err
	}

	var events []schema.Event
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		event, ok, valid := parseRow(record, cols, loc)
		switch {
		case !valid:
			stats.Invalid++
		case !ok:
			stats.Filtered++
		default:
			events = append(events, event)
		}
	}
	return events, stats, nil
}

type columns struct {
	date, velocity, brightness, class int
}

func columnIndex(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := idx[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%q: %w", name, ErrMissingColumn)
		}
		return i, nil
	}

	var c columns
	var err error
	if c.date, err = lookup(DateHeader); err != nil {
		return c, err
	}
	if c.velocity, err = lookup(VelocityHeader); err != nil {
		return c, err
	}
	if c.brightness, err = lookup(BrightnessHeader); err != nil {
		return c, err
	}
	if c.class, err = lookup(ClassHeader); err != nil {
		return c, err
	}
	return c, nil
}

// parseRow returns the event, whether it passes the velocity filter, and whether it parsed.
func parseRow(record []string, c columns, loc *time.Location) (schema.Event, bool, bool) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, err := contract.ParseTimestamp(field(c.date), loc)
	if err != nil {
		return schema.Event{}, false, false
	}
	velocity, err := strconv.ParseFloat(field(c.velocity), 64)
	if err != nil || math.IsInf(velocity, 0) {
		return schema.Event{}, false, false
	}
	if math.IsNaN(velocity) || velocity <= 0 {
		return schema.Event{}, false, true
	}
	brightness, err := strconv.ParseFloat(field(c.brightness), 64)
	if err != nil || math.IsNaN(brightness) || math.IsInf(brightness, 0) {
		return schema.Event{}, false, false
	}
	class := field(c.class)
	intensity, err := ParseFlareClass(class)
	if err != nil {
		return schema.Event{}, false, false
	}
	return schema.Event{
		Timestamp:  ts,
		Velocity:   velocity,
		FlareClass: class,
		Intensity:  intensity,
		Brightness: brightness,
	}, true, true
}
