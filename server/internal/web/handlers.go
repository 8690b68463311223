package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/locavail/locavail/server/internal/availability"
	"github.com/locavail/locavail/server/internal/catalog"
	"github.com/locavail/locavail/server/internal/session"
	"github.com/locavail/locavail/server/internal/ws"
)

// noneOption is the placeholder entry of the removal selector.
const noneOption = "-"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	master := st.Catalog()

	data := pageData{
		Priorities:    catalog.Priorities(),
		RemoveOptions: removeOptions(master),
	}

	view, err := s.opts.Service.Render(r.Context(), master.Entries())
	switch {
	case err == nil:
		data.View = view
		s.render(w, http.StatusOK, data)
	case errors.Is(err, context.Canceled):
		// client went away
	case availability.IsUpstream(err):
		slog.Warn("web: render failed", "session", st.ID, "err", err)
		data.Error = err.Error()
		s.render(w, http.StatusBadGateway, data)
	default:
		slog.Error("web: render failed", "session", st.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	p, err := catalog.ParsePriority(r.PostFormValue("priority"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.apply(r, session.Mutation{Op: session.OpAdd, Name: r.PostFormValue("location"), Priority: p})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if name := r.PostFormValue("location"); name != noneOption {
		s.apply(r, session.Mutation{Op: session.OpRemove, Name: name})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.opts.Cache.Clear()

	st := session.FromContext(r.Context())
	view, err := s.opts.Service.Render(r.Context(), st.Catalog().Entries())
	if err != nil {
		slog.Warn("web: render after refresh failed", "session", st.ID, "err", err)
		view = nil
	}
	s.opts.Hub.Broadcast(ws.RefreshMessage(view))

	slog.Info("web: sheets refreshed", "session", st.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) apply(r *http.Request, m session.Mutation) {
	st := session.FromContext(r.Context())
	if !st.Apply(m) {
		return
	}
	s.opts.Metrics.Mutation(string(m.Op))
	slog.Debug("web: master list edited", "session", st.ID, "op", m.Op, "location", m.Name, "priority", m.Priority)
}

func (s *Server) render(w http.ResponseWriter, code int, data pageData) {
	data.Title = pageTitle
	data.Description = pageDescription

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		slog.Error("web: execute template", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w) //nolint:errcheck
}

// removeOptions lists each master name once, in list order.
func removeOptions(master *catalog.Store) []string {
	seen := make(map[string]struct{})
	out := []string{noneOption}
	for _, name := range master.Names() {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
