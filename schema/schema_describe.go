package schema

import "time"

// Summary holds the descriptive statistics of one numeric column.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"` // Sample standard deviation (n-1)
	SEM    float64 `json:"sem"` // Std / sqrt(N)
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Lower2SE returns the lower edge of the mean +/- 2 SEM band.
func (s Summary) Lower2SE() float64 { return s.Mean - 2*s.SEM }

// Upper2SE returns the upper edge of the mean +/- 2 SEM band.
func (s Summary) Upper2SE() float64 { return s.Mean + 2*s.SEM }

// Correlation is a Pearson coefficient with its two-tailed p-value.
type Correlation struct {
	X      string  `json:"x"`
	Y      string  `json:"y"`
	N      int     `json:"n"`
	R      float64 `json:"r"`
	PValue float64 `json:"p_value"`
}

// FieldSummary labels a Summary with the column it describes.
type FieldSummary struct {
	Field   Field   `json:"field"`
	Summary Summary `json:"summary"`
}

// DescribeReport is the result of describing a catalog.
type DescribeReport struct {
	Events      int            `json:"events"`
	Fields      []FieldSummary `json:"fields"`
	Correlation *Correlation   `json:"correlation,omitempty"`
}

// Phase is a named solar-cycle interval; both dates are inclusive.
type Phase struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on or between the phase dates.
// End is a calendar day, so any instant on that day counts.
func (p Phase) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End.AddDate(0, 0, 1))
}

// PhaseStats summarizes the events of one phase.
type PhaseStats struct {
	Phase      Phase   `json:"phase"`
	Brightness Summary `json:"brightness"`
	Velocity   Summary `json:"velocity"`
}

// PhaseReport is the result of partitioning a catalog into phases.
type PhaseReport struct {
	Events   int          `json:"events"`
	Excluded int          `json:"excluded"` // Events outside every phase or failing the positivity filter
	Phases   []PhaseStats `json:"phases"`
}

// SeriesReport is the Pearson correlation between two aligned dense series.
type SeriesReport struct {
	Left        string      `json:"left"`
	Right       string      `json:"right"`
	Aligned     int         `json:"aligned"` // Timestamps present in both series
	Dropped     int         `json:"dropped"` // Rows removed as non-finite
	Correlation Correlation `json:"correlation"`
}

// DefaultPhases are the SC23 and SC24 minimum and maximum intervals.
var DefaultPhases = []Phase{
	{Name: "sc23_min", Start: date(1996, 5, 1), End: date(1998, 12, 31)},
	{Name: "sc23_max", Start: date(1999, 1, 1), End: date(2003, 12, 31)},
	{Name: "sc24_min", Start: date(2008, 12, 1), End: date(2011, 12, 31)},
	{Name: "sc24_max", Start: date(2012, 1, 1), End: date(2015, 12, 31)},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
