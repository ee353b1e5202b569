package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/solarcorr/schema"
)

// naiveLayouts are the zone-less timestamp layouts found in catalogs and SQL stores.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	time.DateOnly,
}

// ParseTimestamp converts s into an absolute UTC instant. Strings carrying an
// offset (RFC3339) keep it; naive strings are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Define the regular expression to capture "N [units]".
var halfWidthRe = regexp.MustCompile(`^(\d+)\s*(week|day|hour|minute|second|min|sec|h|m|s)s?$`)

// ParseHalfWidth converts strings like "6 hours" or "90m" into a positive time.Duration.
// It first tries Go's built-in time.ParseDuration for standard formats, then falls back
// to custom parsing for human-readable formats.
func ParseHalfWidth(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, fmt.Errorf("%s: %w", s, schema.ErrInvalidWindow)
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := halfWidthRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	// 1: Value (e.g., "6")
	// 2: Unit (e.g., "hour")
	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %w", err)
	}

	var unit time.Duration
	switch matches[2] {
	case "week":
		unit = 7 * 24 * time.Hour
	case "day":
		unit = 24 * time.Hour
	case "hour", "h":
		unit = time.Hour
	case "minute", "min", "m":
		unit = time.Minute
	case "second", "sec", "s":
		unit = time.Second
	default:
		return 0, errors.New("unsupported time unit")
	}

	if value == 0 {
		return 0, fmt.Errorf("%s: %w", s, schema.ErrInvalidWindow)
	}
	if time.Duration(value) > math.MaxInt64/unit {
		return 0, fmt.Errorf("duration %s overflows", s)
	}
	return time.Duration(value) * unit, nil
}

// ParsePhase parses "name:YYYY-MM-DD:YYYY-MM-DD" into a Phase with inclusive dates.
func ParsePhase(s string) (schema.Phase, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return schema.Phase{}, fmt.Errorf("invalid phase %q (expected name:YYYY-MM-DD:YYYY-MM-DD)", s)
	}
	name := strings.TrimSpace(parts[0])
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(parts[1]))
	if err != nil {
		return schema.Phase{}, fmt.Errorf("invalid phase start in %q: %w", s, err)
	}
	end, err := time.Parse(time.DateOnly, strings.TrimSpace(parts[2]))
	if err != nil {
		return schema.Phase{}, fmt.Errorf("invalid phase end in %q: %w", s, err)
	}
	if name == "" {
		return schema.Phase{}, fmt.Errorf("invalid phase %q: empty name", s)
	}
	if end.Before(start) {
		return schema.Phase{}, fmt.Errorf("invalid phase %q: end before start", s)
	}
	return schema.Phase{Name: name, Start: start, End: end}, nil
}
