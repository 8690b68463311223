// Package availability computes which master-list locations are still free
// given the locations already assigned in the connections sheet.
package availability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/locavail/locavail/server/internal/sheets"
)

// Columns of the connections sheet that mark a location as taken.
const (
	ColumnCurrent   = "Current location"
	ColumnPreferred = "Pr. Location 1"
)

// UsedSet is the set of location names already assigned.
type UsedSet map[string]struct{}

// Has reports whether name is in the set.
func (u UsedSet) Has(name string) bool {
	_, ok := u[name]
	return ok
}

// Sorted returns the names in ascending order.
func (u UsedSet) Sorted() []string {
	out := make([]string, 0, len(u))
	for n := range u {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// NewUsedSet builds a set from names as-is.
func NewUsedSet(names ...string) UsedSet {
	u := make(UsedSet, len(names))
	for _, n := range names {
		u[n] = struct{}{}
	}
	return u
}

// ExtractUsed collects the values of the given columns of the connections
// table (ColumnCurrent and ColumnPreferred when none are given), skipping
// null cells, trimming whitespace and deduplicating. Values that are blank
// after trimming are skipped too. A missing column is a *sheets.SchemaError.
func ExtractUsed(connections *sheets.Table, columns ...string) (UsedSet, error) {
	if len(columns) == 0 {
		columns = []string{ColumnCurrent, ColumnPreferred}
	}
	used := make(UsedSet)
	for _, col := range columns {
		values, err := connections.Column(col)
		if err != nil {
			return nil, fmt.Errorf("availability: connections table: %w", err)
		}
		for _, v := range values {
			if !v.Valid {
				continue
			}
			if name := strings.TrimSpace(v.String); name != "" {
				used[name] = struct{}{}
			}
		}
	}
	return used, nil
}
