package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/locavail/locavail/server/internal/availability"
	"github.com/locavail/locavail/server/internal/catalog"
	"github.com/locavail/locavail/server/internal/session"
	"github.com/locavail/locavail/server/internal/sheets"
)

// CacheInspector reports on the sheet cache.
type CacheInspector interface {
	Status() []sheets.EntryStatus
	Count() int
	TTL() time.Duration
}

// SessionCounter reports how many sessions are held.
type SessionCounter interface {
	Count() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	svc      *availability.Service
	cache    CacheInspector
	sessions SessionCounter
	mux      *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(svc *availability.Service, cache CacheInspector, sessions SessionCounter) http.Handler {
	h := &Handler{svc: svc, cache: cache, sessions: sessions, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/availability", h.availability)
	h.mux.HandleFunc("/api/v1/locations", h.locations)
	h.mux.HandleFunc("/api/v1/cache", h.cacheStatus)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		CachedTables: h.cache.Count(),
		CacheTTL:     h.cache.TTL().String(),
		Sessions:     h.sessions.Count(),
	})
}

// availability returns GET /api/v1/availability for the caller's session.
func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	v, err := h.svc.Render(r.Context(), st.Catalog().Entries())
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return
	case availability.IsUpstream(err):
		jsonErr(w, http.StatusBadGateway, err.Error())
		return
	default:
		slog.Error("api: render failed", "session", st.ID, "err", err)
		jsonErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := AvailabilityResponse{
		MasterSize:    v.MasterSize,
		Available:     v.Available,
		UsedCount:     len(v.Used),
		LocationsRows: v.LocationsRows,
		Tiers:         make([]TierResponse, 0, len(v.Tiers)),
		GeneratedAt:   v.GeneratedAt.Format(time.RFC3339),
	}
	for _, t := range v.Tiers {
		resp.Tiers = append(resp.Tiers, TierResponse{
			Priority:  string(t.Priority),
			Label:     t.Label(),
			Count:     t.Count(),
			Locations: toLocations(t.Entries),
		})
	}
	jsonResp(w, http.StatusOK, resp)
}

// locations returns GET /api/v1/locations for the caller's session.
func (h *Handler) locations(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	entries := st.Catalog().Entries()

	muts := st.Mutations()
	out := make([]MutationResponse, 0, len(muts))
	for _, m := range muts {
		out = append(out, MutationResponse{Op: string(m.Op), Location: m.Name, Priority: string(m.Priority)})
	}

	jsonResp(w, http.StatusOK, LocationsResponse{
		Count:     len(entries),
		Locations: toLocations(entries),
		Mutations: out,
	})
}

// cacheStatus returns GET /api/v1/cache.
func (h *Handler) cacheStatus(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, CacheResponse{
		TTL:     h.cache.TTL().String(),
		Entries: h.cache.Status(),
	})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toLocations(entries []catalog.Entry) []LocationResponse {
	out := make([]LocationResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LocationResponse{Location: e.Name, Priority: string(e.Priority)})
	}
	return out
}
