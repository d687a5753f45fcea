package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/firewatch/firewatch/pkg/types"
	"github.com/firewatch/firewatch/server/internal/alerts"
	"github.com/firewatch/firewatch/server/internal/store"
)

// AlertSource supplies alerts for the API. *alerts.Engine implements it.
type AlertSource interface {
	Active() []*alerts.Alert
	FiringCount() int
}

// Handler serves all /api/v1/* endpoints from the sweep store.
type Handler struct {
	store  *store.Store
	alerts AlertSource
	mux    *http.ServeMux
}

// New creates a Handler and registers its routes. al may be nil.
func New(st *store.Store, al AlertSource) http.Handler {
	h := &Handler{store: st, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/sites", h.listSites)
	h.mux.HandleFunc("/api/v1/sites/", h.site) // {id} and {id}/rows
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.mux.ServeHTTP(w, r)
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	entries := h.store.List()
	resp := HealthResponse{State: "unknown", SiteCount: len(entries)}
	if h.alerts != nil {
		resp.AlertCount = h.alerts.FiringCount()
	}

	worst := -1
	for _, e := range entries {
		base := e.Sweep.Baseline()
		if base == nil {
			continue
		}
		resp.TotalCriticalEvents += base.Summary.CriticalEvents
		if base.Summary.PeakRisk > worst {
			worst = base.Summary.PeakRisk
		}
	}
	if worst >= 0 {
		resp.WorstBaselineRisk = worst
		resp.State = types.RiskLabel(worst)
	}
	jsonResp(w, http.StatusOK, resp)
}

// listSites returns GET /api/v1/sites.
func (h *Handler) listSites(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, siteResponses(h.store))
}

// site returns GET /api/v1/sites/{id} and GET /api/v1/sites/{id}/rows.
func (h *Handler) site(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sites/"), "/")
	if rest == "" {
		h.listSites(w, r)
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	e, ok := h.store.Live(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "site not found")
		return
	}

	switch sub {
	case "":
		jsonResp(w, http.StatusOK, toSiteResponse(e))
	case "rows":
		scenario := r.URL.Query().Get("scenario")
		if scenario == "" {
			scenario = types.BaselineID
		}
		rep, ok := e.Sweep.Report(scenario)
		if !ok {
			jsonErr(w, http.StatusNotFound, "scenario not found")
			return
		}
		rows := rep.Rows
		if rows == nil {
			rows = []types.ResultRow{}
		}
		jsonResp(w, http.StatusOK, RowsResponse{SiteID: id, Scenario: scenario, Rows: rows})
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

// listAlerts returns GET /api/v1/alerts: firing plus recently resolved.
func (h *Handler) listAlerts(w http.ResponseWriter, _ *http.Request) {
	out := []*alerts.Alert{}
	if h.alerts != nil {
		out = append(out, h.alerts.Active()...)
	}
	jsonResp(w, http.StatusOK, out)
}

// snapshot returns GET /api/v1/snapshot, the full state of every live site.
func (h *Handler) snapshot(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// BuildSnapshot assembles the snapshot payload shared by the REST API and
// the WebSocket hub.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	return SnapshotResponse{
		Sites:       siteResponses(st),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
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

func siteResponses(st *store.Store) []SiteResponse {
	entries := st.List()
	out := make([]SiteResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toSiteResponse(e))
	}
	return out
}

// toSiteResponse maps a store.Entry to its JSON form. Rows are left out; they
// are served by the rows endpoint.
func toSiteResponse(e *store.Entry) SiteResponse {
	sw := e.Sweep
	resp := SiteResponse{
		SiteID:      sw.SiteID,
		SweepID:     sw.ID,
		Source:      sw.Source,
		GeneratedAt: sw.GeneratedAt.UTC().Format(time.RFC3339),
		Readings:    sw.Readings,
		RiskLabel:   "unknown",
		Scenarios:   make([]ScenarioResponse, 0, len(sw.Reports)),
		Insights:    computeInsights(sw),
		LastSeen:    e.UpdatedAt.UTC().Format(time.RFC3339),
	}

	base := sw.Baseline()
	if base != nil {
		resp.RiskLabel = types.RiskLabel(base.Summary.PeakRisk)
	}
	for _, r := range sw.Reports {
		sr := ScenarioResponse{
			Scenario:     r.Scenario,
			Summary:      r.Summary,
			AvgRiskLabel: types.RiskLabel(int(r.Summary.AvgRisk + 0.5)),
		}
		if base != nil && r.Scenario.ID != base.Scenario.ID {
			sr.DeltaAvgRisk = r.Summary.AvgRisk - base.Summary.AvgRisk
			sr.DeltaCriticalEvents = r.Summary.CriticalEvents - base.Summary.CriticalEvents
			sr.DeltaPeakTemp = r.Summary.PeakTemp - base.Summary.PeakTemp
		}
		resp.Scenarios = append(resp.Scenarios, sr)
	}
	return resp
}
