package catalog

import "fmt"

// Priority is the display tier a location is grouped under.
type Priority string

// The three tiers, highest first.
const (
	Top    Priority = "Top"
	Middle Priority = "Middle"
	Low    Priority = "Low"
)

// Priorities returns the tiers in display order.
func Priorities() []Priority {
	return []Priority{Top, Middle, Low}
}

// ParsePriority maps a form or query value to a Priority.
// Matching is exact: "Top", "Middle" or "Low".
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case Top, Middle, Low:
		return p, nil
	default:
		return "", fmt.Errorf("catalog: unknown priority %q: want Top|Middle|Low", s)
	}
}

func (p Priority) String() string { return string(p) }
