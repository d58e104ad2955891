package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the form dates are persisted in.
const CanonicalLayout = "2006-01-02"

// Date is a calendar date with no time-of-day. Two Dates are equal when they
// name the same day, whatever string they were parsed from.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.UTC)
}

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return d.Time().Format(CanonicalLayout)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ParseError is returned when a raw date string cannot be normalized.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %s", e.Value, e.Reason)
}

// Layouts tried in order. Anything after the date part (time of day, offset,
// zone name) is cut off before parsing, so only the leading date is matched.
var dateLayouts = []struct {
	layout string
	prefix *regexp.Regexp
}{
	{"2006-01-02", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)},
	{"1/2/2006", regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`)},
	{"Mon Jan 2 2006", regexp.MustCompile(`^[A-Za-z]{3} [A-Za-z]{3} \d{1,2} \d{4}`)},
	{"Jan 2,2006", regexp.MustCompile(`^[A-Za-z]{3} \d{1,2},\d{4}`)},
	{"Jan 2, 2006", regexp.MustCompile(`^[A-Za-z]{3} \d{1,2}, \d{4}`)},
	{"January 2, 2006", regexp.MustCompile(`^[A-Za-z]{4,9} \d{1,2}, \d{4}`)},
}

// /Date(1677801600000)/ or /Date(1677801600000-0500)/
var aspNetDate = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// ParseDate normalizes a raw date string to a Date. Time of day and zone
// offsets are ignored; the calendar date is taken as written.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, &ParseError{Value: raw, Reason: "empty value"}
	}

	if m := aspNetDate.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Date{}, &ParseError{Value: raw, Reason: err.Error()}
		}
		return DateOf(time.UnixMilli(ms), time.UTC), nil
	}

	for _, l := range dateLayouts {
		prefix := l.prefix.FindString(s)
		if prefix == "" {
			continue
		}
		t, err := time.Parse(l.layout, prefix)
		if err != nil {
			return Date{}, &ParseError{Value: raw, Reason: err.Error()}
		}
		return DateOf(t, time.UTC), nil
	}

	return Date{}, &ParseError{Value: raw, Reason: "unrecognized format"}
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}
