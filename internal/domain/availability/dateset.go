package availability

import (
	"sort"
	"strings"
)

// KnownDateSet is the set of dates already reported, persisted across runs.
type KnownDateSet map[Date]struct{}

func NewKnownDateSet(dates ...Date) KnownDateSet {
	s := make(KnownDateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// ParseKnown normalizes persisted date strings. Empty entries are skipped.
func ParseKnown(raw []string) (KnownDateSet, error) {
	s := make(KnownDateSet, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		d, err := ParseDate(r)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	return s, nil
}

func (s KnownDateSet) Add(d Date) {
	s[d] = struct{}{}
}

func (s KnownDateSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

func (s KnownDateSet) Len() int {
	return len(s)
}

// Sorted returns the dates in ascending order.
func (s KnownDateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sortDates(out)
	return out
}

// Strings returns the canonical form of every date, ascending.
func (s KnownDateSet) Strings() []string {
	return FormatDates(s.Sorted())
}

// FormatDates renders dates in canonical form, preserving order.
func FormatDates(dates []Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

// NormalizeObserved parses every raw string, dropping duplicates. The result
// is sorted ascending. The first unparseable entry aborts with a *ParseError.
func NormalizeObserved(raw []string) ([]Date, error) {
	seen := make(map[Date]struct{}, len(raw))
	out := make([]Date, 0, len(raw))
	for _, r := range raw {
		d, err := ParseDate(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sortDates(out)
	return out, nil
}

func sortDates(dates []Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
