package availability

import (
	"context"
	"time"

	"github.com/locavail/locavail/server/internal/catalog"
	"github.com/locavail/locavail/server/internal/sheets"
)

// Sources names the two remote tables a view is computed from.
type Sources struct {
	LocationsURL   string
	ConnectionsURL string
	// UsedColumns overrides the connections columns read for the used set.
	UsedColumns []string
}

// View is the result of one render cycle.
type View struct {
	Tiers         []Tier
	Used          UsedSet
	MasterSize    int
	Available     int
	LocationsRows int
	GeneratedAt   time.Time
}

// Build loads both tables through loader, extracts the used set from the
// connections table and groups the master entries that remain free.
// Any fetch or schema failure aborts the whole build.
func Build(ctx context.Context, loader sheets.Loader, src Sources, master []catalog.Entry) (*View, error) {
	locations, err := loader.Load(ctx, src.LocationsURL)
	if err != nil {
		return nil, err
	}
	connections, err := loader.Load(ctx, src.ConnectionsURL)
	if err != nil {
		return nil, err
	}

	used, err := ExtractUsed(connections, src.UsedColumns...)
	if err != nil {
		return nil, err
	}

	free := Filter(master, used)
	return &View{
		Tiers:         Group(free),
		Used:          used,
		MasterSize:    len(master),
		Available:     len(free),
		LocationsRows: locations.Len(),
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// Tier returns the tier for p, or an empty tier if p is unknown.
func (v *View) Tier(p catalog.Priority) Tier {
	for _, t := range v.Tiers {
		if t.Priority == p {
			return t
		}
	}
	return Tier{Priority: p}
}
