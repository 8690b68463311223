// Package api implements the JSON API of the locavail server.
//
// New(svc, cache, sessions) returns an http.Handler that serves:
//
//	GET /api/v1/health        status, cached table count, session count
//	GET /api/v1/availability  grouped free locations for the caller's session
//	GET /api/v1/locations     the caller's master list and edit log
//	GET /api/v1/cache         cached tables with their age and freshness
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Resolve the caller's session via session.FromContext, so the handler
//     must be mounted behind session.Manager.Middleware
//
// A fetch or schema failure while building a view is reported as 502 with
// an {"error": "..."} body.
package api
