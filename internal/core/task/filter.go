package task

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// FilterType selects which tasks a list shows.
type FilterType int

const (
	FilterAll FilterType = iota
	FilterActive
	FilterCompleted
)

// FilterTypes lists every filter in display order.
var FilterTypes = []FilterType{FilterAll, FilterActive, FilterCompleted}

func (f FilterType) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Next returns the filter that follows f when cycling through FilterTypes.
func (f FilterType) Next() FilterType {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Includes reports whether t passes the filter. Unknown filter values behave
// like FilterAll.
func (f FilterType) Includes(t Task) bool {
	switch f {
	case FilterActive:
		return t.IsActive()
	case FilterCompleted:
		return t.IsCompleted()
	default:
		return true
	}
}

// Filter returns the tasks that pass f, preserving input order. The input
// slice is never modified.
func Filter(tasks []Task, f FilterType) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Includes(t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseFilterType converts a user supplied name into a FilterType. Unknown
// names produce an error that suggests the closest known name.
func ParseFilterType(s string) (FilterType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, f := range FilterTypes {
		if f.String() == name {
			return f, nil
		}
	}

	best, bestDist := "", -1
	for _, f := range FilterTypes {
		d := levenshtein.ComputeDistance(name, f.String())
		if bestDist < 0 || d < bestDist {
			best, bestDist = f.String(), d
		}
	}

	if bestDist <= 3 {
		return FilterAll, fmt.Errorf("unknown filter %q, did you mean %q?", s, best)
	}
	return FilterAll, fmt.Errorf("unknown filter %q: must be one of all, active, completed", s)
}

// MarshalText implements encoding.TextMarshaler so filters round-trip through
// YAML and JSON as names.
func (f FilterType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FilterType) UnmarshalText(b []byte) error {
	parsed, err := ParseFilterType(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
