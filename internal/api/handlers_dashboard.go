package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/lead-console/internal/dashboard"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/pkg/httputil"
	"github.com/ignite/lead-console/internal/pkg/logger"
)

// DashboardResponse is the dashboard payload. Stale marks stats kept from an
// earlier load because the latest refresh failed.
type DashboardResponse struct {
	Stats    dashboard.Stats `json:"stats"`
	LoadedAt time.Time       `json:"loadedAt"`
	Stale    bool            `json:"stale"`
	Error    string          `json:"error,omitempty"`
}

func (h *Handlers) dashboardResponse() DashboardResponse {
	stats, _ := h.dashboard.Snapshot()
	return DashboardResponse{Stats: stats, LoadedAt: h.dashboard.LoadedAt()}
}

// GetDashboard returns the current stats, loading them on first use.
//
//	GET /api/dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if _, loaded := h.dashboard.Snapshot(); !loaded {
		if err := h.dashboard.Load(r.Context()); err != nil {
			respondViewError(w, err)
			return
		}
	}
	httputil.OK(w, h.dashboardResponse())
}

// RefreshDashboard reloads the stats. When the reload fails after an
// earlier success, the 502 carries the retained stats marked stale.
//
//	POST /api/dashboard/refresh
func (h *Handlers) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	err := h.dashboard.Load(r.Context())
	if err == nil {
		httputil.OK(w, h.dashboardResponse())
		return
	}

	_, loaded := h.dashboard.Snapshot()
	if !loaded || !leadstore.IsStoreError(err) {
		respondViewError(w, err)
		return
	}
	logger.Warn("serving stale dashboard", "error", err)
	resp := h.dashboardResponse()
	resp.Stale = true
	resp.Error = "lead store unavailable"
	respondJSON(w, http.StatusBadGateway, resp)
}

// ToggleDashboardAutomation flips automation on one of the recent leads.
//
//	POST /api/dashboard/leads/{id}/automation
func (h *Handlers) ToggleDashboardAutomation(w http.ResponseWriter, r *http.Request) {
	lead, err := h.dashboard.ToggleAutomation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondViewError(w, err)
		return
	}
	httputil.Accepted(w, lead)
}
