package api

import "github.com/locavail/locavail/server/internal/sheets"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	CachedTables int    `json:"cached_tables"`
	CacheTTL     string `json:"cache_ttl"`
	Sessions     int    `json:"sessions"`
}

// LocationResponse is one master list entry.
type LocationResponse struct {
	Location string `json:"location"`
	Priority string `json:"priority"`
}

// TierResponse is one priority group in GET /api/v1/availability.
type TierResponse struct {
	Priority  string             `json:"priority"`
	Label     string             `json:"label"`
	Count     int                `json:"count"`
	Locations []LocationResponse `json:"locations"`
}

// AvailabilityResponse is the payload for GET /api/v1/availability.
type AvailabilityResponse struct {
	MasterSize    int            `json:"master_size"`
	Available     int            `json:"available"`
	UsedCount     int            `json:"used_count"`
	LocationsRows int            `json:"locations_rows"`
	Tiers         []TierResponse `json:"tiers"`
	GeneratedAt   string         `json:"generated_at"` // RFC3339
}

// MutationResponse is one logged edit in GET /api/v1/locations.
type MutationResponse struct {
	Op       string `json:"op"`
	Location string `json:"location"`
	Priority string `json:"priority,omitempty"`
}

// LocationsResponse is the payload for GET /api/v1/locations.
type LocationsResponse struct {
	Count     int                `json:"count"`
	Locations []LocationResponse `json:"locations"`
	Mutations []MutationResponse `json:"mutations"`
}

// CacheResponse is the payload for GET /api/v1/cache.
type CacheResponse struct {
	TTL     string               `json:"ttl"`
	Entries []sheets.EntryStatus `json:"entries"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
