// Package timeconv converts timestamps between the user's local wall clock
// and the canonical UTC format the Toggl API expects.
package timeconv

import (
	"strings"
	"time"

	"toggl-mcp/internal/domain"
)

const (
	// UTCLayout is the canonical wire format. Sub-second precision is not
	// tracked, so the millisecond field always renders as 000.
	UTCLayout = "2006-01-02T15:04:05.000Z"
	// DisplayLayout renders a local time for humans.
	DisplayLayout = "2006-01-02 15:04:05 MST"

	// InvalidTimestamp prefixes the string UTCToLocal returns for input it
	// cannot parse. Callers check for it with strings.HasPrefix.
	InvalidTimestamp = "Invalid timestamp format"
)

// Local inputs are naive wall-clock times. The first layout is the documented
// one; the rest are accepted for tolerance.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// UTC inputs either end in Z (with or without fractional seconds) or carry
// an explicit offset.
var utcLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
}

// ConversionReport describes what LocalToUTC did with its input.
type ConversionReport struct {
	OriginalInput     string `json:"original_input"`
	ConversionApplied bool   `json:"conversion_applied"`
	SystemTimezone    string `json:"system_timezone"`
	ConvertedUTC      string `json:"converted_utc,omitempty"`
	Error             string `json:"error,omitempty"`
}

// TimezoneInfo is attached to query results so the caller can render times.
type TimezoneInfo struct {
	Name        string `json:"timezone_name"`
	Offset      string `json:"timezone_offset"`
	CurrentTime string `json:"current_time"`
}

// Converter holds the local location and a clock. It has no other state.
type Converter struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Converter for loc using the wall clock. A nil loc means UTC.
func New(loc *time.Location) *Converter {
	return NewWithClock(loc, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(loc *time.Location, now func() time.Time) *Converter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Converter{loc: loc, now: now}
}

// LoadLocation resolves an IANA name; empty means the system location.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Location returns the configured local location.
func (c *Converter) Location() *time.Location { return c.loc }

// Now returns the current instant in the local location.
func (c *Converter) Now() time.Time { return c.now().In(c.loc) }

// FormatUTC renders t in the canonical wire format.
func FormatUTC(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(UTCLayout)
}

// ParseUTC parses any accepted UTC form.
func ParseUTC(s string) (time.Time, error) {
	var err error
	for _, layout := range utcLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// NowUTC returns the current instant in the canonical wire format.
func (c *Converter) NowUTC() string {
	return FormatUTC(c.now())
}

// LocalToUTC reinterprets input as local wall-clock time and converts it to
// canonical UTC. Fractional seconds and a trailing Z are dropped first, so a
// string that already looks like UTC is still treated as local.
//
// On failure the input is returned unchanged so the write can still reach
// the backend; the report carries the parse error.
func (c *Converter) LocalToUTC(input string) (string, ConversionReport) {
	report := ConversionReport{
		OriginalInput:  input,
		SystemTimezone: c.loc.String(),
	}
	if input == "" {
		return "", report
	}

	clean := input
	if i := strings.IndexByte(clean, '.'); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.ReplaceAll(clean, "Z", "")

	var (
		t   time.Time
		err error
	)
	for _, layout := range localLayouts {
		if t, err = time.ParseInLocation(layout, clean, c.loc); err == nil {
			break
		}
	}
	if err != nil {
		report.Error = err.Error()
		return input, report
	}

	out := FormatUTC(t)
	report.ConversionApplied = true
	report.ConvertedUTC = out
	return out, report
}

// UTCToLocal renders a UTC timestamp in the local location for display.
// Unparseable input yields a string starting with InvalidTimestamp.
func (c *Converter) UTCToLocal(input string) string {
	if input == "" {
		return ""
	}
	t, err := ParseUTC(input)
	if err != nil {
		return InvalidTimestamp + ": " + err.Error()
	}
	return t.In(c.loc).Format(DisplayLayout)
}

// Enrich returns a copy of e with StartLocal/StopLocal filled in.
func (c *Converter) Enrich(e domain.TimeEntry) domain.TimeEntry {
	if e.Start != "" {
		e.StartLocal = c.UTCToLocal(e.Start)
	}
	if e.Stop != "" {
		e.StopLocal = c.UTCToLocal(e.Stop)
	}
	return e
}

// EnrichAll enriches every entry in place and returns the slice.
func (c *Converter) EnrichAll(entries []domain.TimeEntry) []domain.TimeEntry {
	for i := range entries {
		entries[i] = c.Enrich(entries[i])
	}
	return entries
}

// Info describes the local timezone at the current instant.
func (c *Converter) Info() TimezoneInfo {
	now := c.Now()
	return TimezoneInfo{
		Name:        c.loc.String(),
		Offset:      now.Format("-0700"),
		CurrentTime: now.Format(DisplayLayout),
	}
}
