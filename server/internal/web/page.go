package web

import (
	"embed"
	"html/template"

	"github.com/locavail/locavail/server/internal/availability"
	"github.com/locavail/locavail/server/internal/catalog"
)

const (
	pageTitle       = "Available Locations (Filtered)"
	pageDescription = "Filtered from team usage (Current + Pr. Location 1 only) and grouped by priority."
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title       string
	Description string

	// View is nil when Error is set.
	View  *availability.View
	Error string

	Priorities    []catalog.Priority
	RemoveOptions []string
}
