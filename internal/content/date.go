package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isoDateLayout is the strict calendar form tried before general parsing.
const isoDateLayout = "2006-01-02"

// LongDateLayout renders dates as "January 5, 2024".
const LongDateLayout = "January 2, 2006"

// CalendarDate is a civil date with no time of day and no zone.
// The zero value means "no date".
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is absent.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC of the date. Only use it for formatting or comparison.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// String renders the ISO form, or "" for the zero date.
func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Long renders the human-readable form, or "" for the zero date.
func (d CalendarDate) Long() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(LongDateLayout)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseDate derives a calendar date from a front matter value.
//
// Strings in YYYY-MM-DD form map to exactly that day. Other strings go through
// dateparse in loc and keep the calendar day of the parsed instant in its own
// zone, so an explicit offset never shifts the day. time.Time values are taken
// as-is. Anything else, or an unparseable string, yields ok=false.
func ParseDate(value any, loc *time.Location) (CalendarDate, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch v := value.(type) {
	case nil:
		return CalendarDate{}, false
	case time.Time:
		if v.IsZero() {
			return CalendarDate{}, false
		}
		return DateOf(v), true
	case string:
		return parseDateString(v, loc)
	case int, int64, float64:
		return parseDateString(fmt.Sprint(v), loc)
	default:
		return CalendarDate{}, false
	}
}

func parseDateString(s string, loc *time.Location) (CalendarDate, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, false
	}
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return DateOf(t), true
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return CalendarDate{}, false
	}
	return DateOf(t), true
}
