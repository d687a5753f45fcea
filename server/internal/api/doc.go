// Package api implements the HTTP REST API for firewatch-server.
//
// New(store, alerts) returns an http.Handler that serves:
//
//	GET /api/v1/health: worst baseline risk, site and alert counts
//	GET /api/v1/sites: every live site ([]SiteResponse)
//	GET /api/v1/sites/{id}: one site; 404 if unknown or stale
//	GET /api/v1/sites/{id}/rows?scenario=ID: per-reading rows (default baseline)
//	GET /api/v1/alerts: firing and recently resolved alerts
//	GET /api/v1/snapshot: all live sites + generated_at
//
// Each site carries insights (insights.go): short hints ranked critical,
// warning, info, ok, covering critical baseline readings, a saturated warning
// margin, scenarios that at least double the baseline's critical events and
// heavy high-light exposure.
//
// All endpoints answer JSON and return 405 for non-GET methods. Routing uses
// net/http's ServeMux.
package api
