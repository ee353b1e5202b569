package contract

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/klauspost/pgzip"
	"github.com/sirupsen/logrus"
)

// Significance label constants.
const (
	StrongValue   = "Strong"   // p < 0.001
	HighValue     = "High"     // p < 0.01
	ModerateValue = "Moderate" // p < 0.05
	NoneValue     = "None"     // not significant
)

// Agreement label constants.
const (
	AgreeValue    = "Agree"
	DisagreeValue = "Disagree"
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgRed, color.Bold)     // StrongColor marks the most significant fits.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor marks strong but not extreme significance.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor marks the conventional 5% level.
	NoneColor     = color.New(color.FgCyan)                // NoneColor marks fits that are not significant.
	AgreeColor    = color.New(color.FgGreen)
	DisagreeColor = color.New(color.FgRed, color.Bold)
)

// GetPlainLabel returns a plain text label for the significance of a p-value.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(p float64) string {
	switch {
	case p < 0.001:
		return StrongValue
	case p < 0.01:
		return HighValue
	case p < 0.05:
		return ModerateValue
	default:
		return NoneValue
	}
}

// GetColorLabel returns a colored significance label for console output (table).
func GetColorLabel(p float64) string {
	text := GetPlainLabel(p)

	switch text {
	case StrongValue:
		return StrongColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default:
		return NoneColor.Sprint(text)
	}
}

// GetAgreementLabel returns Agree or Disagree, colored when useColors is set.
func GetAgreementLabel(agree, useColors bool) string {
	if agree {
		if useColors {
			return AgreeColor.Sprint(AgreeValue)
		}
		return AgreeValue
	}
	if useColors {
		return DisagreeColor.Sprint(DisagreeValue)
	}
	return DisagreeValue
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// OpenInput opens a file for reading, decompressing it when the name ends in .gz.
func OpenInput(filePath string) (io.ReadCloser, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(filePath), ".gz") {
		return f, nil
	}
	gz, err := pgzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gzip %s: %w", filePath, err)
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

// gzipFile closes both the decompressor and the file underneath it.
type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// Logger returns the process-wide logger. It writes text to stderr so that
// stdout stays reserved for results.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		logger.SetLevel(logrus.InfoLevel)
	})
	return logger
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger().WithError(err).Warn(msg)
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
