package models

import (
	"fmt"
	"time"
)

// CalendarDayLayout is the wire format of a CalendarDay.
const CalendarDayLayout = "2006-01-02"

// MCalendarDay is a UTC calendar day, comparable and usable as a map key.
type MCalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// -----------------------------------------------------------------------------

// DayOf returns the UTC calendar day containing t, ignoring time of day.
func DayOf(t time.Time) MCalendarDay {
	y, m, d := t.UTC().Date()
	return MCalendarDay{Year: y, Month: m, Day: d}
}

// -----------------------------------------------------------------------------

// DayOfUnix returns the UTC calendar day of a unix timestamp in seconds.
func DayOfUnix(ts int64) MCalendarDay {
	return DayOf(time.Unix(ts, 0))
}

// -----------------------------------------------------------------------------

// ParseCalendarDay parses a "YYYY-MM-DD" string.
func ParseCalendarDay(s string) (MCalendarDay, error) {
	t, err := time.Parse(CalendarDayLayout, s)
	if err != nil {
		return MCalendarDay{}, fmt.Errorf("invalid calendar day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// -----------------------------------------------------------------------------

// Time returns midnight UTC of the day.
func (d MCalendarDay) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------

func (d MCalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// -----------------------------------------------------------------------------

// Before reports whether d is strictly earlier than o.
func (d MCalendarDay) Before(o MCalendarDay) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// -----------------------------------------------------------------------------

// IsZero reports whether the day was never set.
func (d MCalendarDay) IsZero() bool {
	return d == MCalendarDay{}
}

// -----------------------------------------------------------------------------

func (d MCalendarDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// -----------------------------------------------------------------------------

func (d *MCalendarDay) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("calendar day must be a JSON string, got %s", string(data))
	}
	parsed, err := ParseCalendarDay(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
