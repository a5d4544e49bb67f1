package timeconv

import (
	"time"

	"toggl-mcp/internal/domain"
)

// DayRange returns the UTC interval covering the local calendar day at
// offset days from today (0 today, -1 yesterday). The end is the next local
// midnight, so DST transition days are 23 or 25 hours long.
func (c *Converter) DayRange(offset int) domain.DateRange {
	y, m, d := c.Now().Date()
	start := time.Date(y, m, d+offset, 0, 0, 0, 0, c.loc)
	end := time.Date(y, m, d+offset+1, 0, 0, 0, 0, c.loc)
	return domain.DateRange{Start: FormatUTC(start), End: FormatUTC(end)}
}

// Span covers the local days from fromOffset through toOffset. A reversed
// pair produces an inverted interval that matches nothing.
func (c *Converter) Span(fromOffset, toOffset int) domain.DateRange {
	return domain.DateRange{
		Start: c.DayRange(fromOffset).Start,
		End:   c.DayRange(toOffset).End,
	}
}
