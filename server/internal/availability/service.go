package availability

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/locavail/locavail/server/internal/catalog"
	"github.com/locavail/locavail/server/internal/sheets"
)

// Service computes views against the currently configured sources. The
// sources can be swapped at runtime while requests are in flight.
type Service struct {
	loader   sheets.Loader
	sources  atomic.Pointer[Sources]
	onRender func(error)
}

// NewService returns a Service reading through loader. onRender, when
// non-nil, is called once per Render with its outcome.
func NewService(loader sheets.Loader, src Sources, onRender func(error)) *Service {
	s := &Service{loader: loader, onRender: onRender}
	s.SetSources(src)
	return s
}

// SetSources replaces the sources used by subsequent renders.
func (s *Service) SetSources(src Sources) {
	cols := make([]string, len(src.UsedColumns))
	copy(cols, src.UsedColumns)
	src.UsedColumns = cols
	s.sources.Store(&src)
}

// Sources returns the sources currently in use.
func (s *Service) Sources() Sources {
	return *s.sources.Load()
}

// Render builds the view for master.
func (s *Service) Render(ctx context.Context, master []catalog.Entry) (*View, error) {
	v, err := Build(ctx, s.loader, s.Sources(), master)
	if s.onRender != nil {
		s.onRender(err)
	}
	return v, err
}

// IsUpstream reports whether err came from a failed fetch or a malformed
// sheet rather than from the caller.
func IsUpstream(err error) bool {
	var fe *sheets.FetchError
	var se *sheets.SchemaError
	return errors.As(err, &fe) || errors.As(err, &se)
}
