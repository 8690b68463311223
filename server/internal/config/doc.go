// Package config loads the locavail server configuration from YAML.
//
// Config fields:
//   - Server.HTTPPort           port for the page, JSON API, WebSocket and metrics (default 8501)
//   - Server.Session.CookieName name of the signed session cookie
//   - Server.Session.SecretEnv  environment variable holding the cookie signing secret
//   - Server.Session.IdleTTL    how long an unused session keeps its edits (default 12h)
//   - Sheets.LocationsURL       CSV export of the location catalog sheet
//   - Sheets.ConnectionsURL     CSV export of the connections sheet
//   - Sheets.UsedColumns        connections columns that mark a location as used
//   - Sheets.CacheTTL           freshness window for fetched sheets (default 60s)
//   - Sheets.Timeout            per-fetch timeout (default none)
//   - Sheets.Auth.TokenEnv      environment variable holding an optional bearer token
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, fn) reloads the file on change.
package config
