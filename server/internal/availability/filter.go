package availability

import (
	"sort"
	"strconv"

	"github.com/locavail/locavail/server/internal/catalog"
)

// Filter returns the master entries whose name is not in used, in master
// order. Neither input is modified.
func Filter(master []catalog.Entry, used UsedSet) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(master))
	for _, e := range master {
		if !used.Has(e.Name) {
			out = append(out, e)
		}
	}
	return out
}

// Tier is one priority group of available locations, sorted by name.
type Tier struct {
	Priority catalog.Priority `json:"priority"`
	Entries  []catalog.Entry  `json:"locations"`
}

// Count is the number of locations in the tier.
func (t Tier) Count() int { return len(t.Entries) }

// Label is the section heading shown for the tier, e.g. "Top Priority (12)".
func (t Tier) Label() string {
	return string(t.Priority) + " Priority (" + strconv.Itoa(t.Count()) + ")"
}

// Group partitions entries into Top, Middle and Low tiers, always returning
// all three in that order. Within a tier entries are sorted by name with
// byte-wise comparison, so upper case sorts before lower case.
func Group(entries []catalog.Entry) []Tier {
	prios := catalog.Priorities()
	tiers := make([]Tier, len(prios))
	index := make(map[catalog.Priority]int, len(prios))
	for i, p := range prios {
		tiers[i] = Tier{Priority: p, Entries: []catalog.Entry{}}
		index[p] = i
	}
	for _, e := range entries {
		if i, ok := index[e.Priority]; ok {
			tiers[i].Entries = append(tiers[i].Entries, e)
		}
	}
	for i := range tiers {
		sort.SliceStable(tiers[i].Entries, func(a, b int) bool {
			return tiers[i].Entries[a].Name < tiers[i].Entries[b].Name
		})
	}
	return tiers
}
