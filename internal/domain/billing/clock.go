package billing

import (
	"fmt"
	"time"
)

// DefaultTimezone is the civil timezone the panel's billing days are counted in.
const DefaultTimezone = "Asia/Manila"

// Calendar resolves "today" in a fixed civil timezone regardless of the host's zone.
// All date comparisons go through it.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar builds a Calendar for loc. A nil now defaults to time.Now.
func NewCalendar(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// LoadCalendar resolves an IANA zone name, e.g. "Asia/Manila".
func LoadCalendar(name string) (*Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return NewCalendar(loc, nil), nil
}

func (c *Calendar) Location() *time.Location { return c.loc }

// Now is the current instant in the calendar's zone.
func (c *Calendar) Now() time.Time { return c.now().In(c.loc) }

// Today is the current civil date in the calendar's zone.
func (c *Calendar) Today() Date { return c.CivilDate(c.now()) }

// CivilDate strips time-of-day from t after moving it into the calendar's zone.
func (c *Calendar) CivilDate(t time.Time) Date { return FromTime(t.In(c.loc)) }
