package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/locavail/locavail/server/internal/config"
)

const (
	idKey    = "sid"
	savedKey = "saved" // unix millis of the last cookie write
)

// maxRefreshInterval caps how long a cookie goes without being re-issued.
const maxRefreshInterval = time.Minute

type ctxKey struct{}

// Manager ties the signed session cookie to a State in the Registry.
type Manager struct {
	store    sessions.Store
	name     string
	registry *Registry
	// refresh is how old a cookie may get before it is re-issued, so an
	// active session never reaches the cookie's max age.
	refresh time.Duration
	now     func() time.Time
}

// NewManager builds a cookie-backed Manager. When the configured secret is
// not set a random signing key is generated, so cookies issued before a
// restart are ignored and those browsers start a new session.
func NewManager(cfg config.SessionConfig, reg *Registry) (*Manager, error) {
	secret := []byte(cfg.Secret())
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, fmt.Errorf("session: generate signing key")
		}
		slog.Warn("session: no secret configured, using a random key", "env", cfg.SecretEnv)
	}

	cs := sessions.NewCookieStore(secret)
	cs.MaxAge(int(cfg.IdleTTL.Seconds()))
	cs.Options.Path = "/"
	cs.Options.HttpOnly = true
	cs.Options.SameSite = http.SameSiteLaxMode

	refresh := cfg.IdleTTL / 4
	if refresh > maxRefreshInterval {
		refresh = maxRefreshInterval
	}
	return &Manager{
		store:    cs,
		name:     cfg.CookieName,
		registry: reg,
		refresh:  refresh,
		now:      time.Now,
	}, nil
}

// Middleware resolves the caller's session, issuing a new id when the
// request carries no valid cookie, and stores its State in the request
// context for FromContext.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := m.resolve(w, r)
		if err != nil {
			slog.Error("session: resolve failed", "err", err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, st)))
	})
}

func (m *Manager) resolve(w http.ResponseWriter, r *http.Request) (*State, error) {
	// A cookie signed with an old key fails to decode; gorilla still hands
	// back a fresh session in that case.
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		slog.Debug("session: discarding undecodable cookie", "err", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("session: no session for cookie %q", m.name)
	}

	now := m.now()
	id, _ := sess.Values[idKey].(string)
	saved, _ := sess.Values[savedKey].(int64)
	switch {
	case id == "":
		id = uuid.NewString()
		sess.Values[idKey] = id
		slog.Debug("session: started", "id", id)
	case now.Sub(time.UnixMilli(saved)) < m.refresh:
		return m.registry.Get(id), nil
	}

	sess.Values[savedKey] = now.UnixMilli()
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("session: save cookie: %w", err)
	}
	return m.registry.Get(id), nil
}

// FromContext returns the State placed by Manager.Middleware. Outside the
// middleware it returns a throwaway State with no edits.
func FromContext(ctx context.Context) *State {
	if st, ok := ctx.Value(ctxKey{}).(*State); ok {
		return st
	}
	return newState("")
}

// Registry returns the registry sessions are stored in.
func (m *Manager) Registry() *Registry { return m.registry }
