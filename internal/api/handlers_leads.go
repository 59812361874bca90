package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadtable"
	"github.com/ignite/lead-console/internal/pkg/httputil"
)

// LeadsResponse is the table payload. Empty is true when the store holds no
// leads at all, as opposed to a filter matching nothing.
type LeadsResponse struct {
	Filter string          `json:"filter"`
	Empty  bool            `json:"empty"`
	Rows   []leadtable.Row `json:"rows"`
}

// BlurResponse reports whether leaving the name field saved anything.
type BlurResponse struct {
	Saved bool          `json:"saved"`
	Row   leadtable.Row `json:"row"`
}

type draftRequest struct {
	Name string `json:"name"`
}

type stageRequest struct {
	Stage domain.Stage `json:"stage"`
}

// leadsResponse filters per request; the search text is the caller's, not
// shared table state.
func (h *Handlers) leadsResponse(q string) LeadsResponse {
	return LeadsResponse{
		Filter: q,
		Empty:  h.table.Empty(),
		Rows:   h.table.RowsMatching(q),
	}
}

// GetLeads returns the rows matching q.
//
//	GET /api/leads?q=
func (h *Handlers) GetLeads(w http.ResponseWriter, r *http.Request) {
	if !h.table.Loaded() {
		if err := h.table.Load(r.Context()); err != nil {
			respondViewError(w, err)
			return
		}
	}
	httputil.OK(w, h.leadsResponse(r.URL.Query().Get("q")))
}

// RefreshLeads reloads the table, resetting every field to synced.
//
//	POST /api/leads/refresh?q=
func (h *Handlers) RefreshLeads(w http.ResponseWriter, r *http.Request) {
	if err := h.table.Load(r.Context()); err != nil {
		respondViewError(w, err)
		return
	}
	httputil.OK(w, h.leadsResponse(r.URL.Query().Get("q")))
}

// EditLeadName stores a name draft for the row.
//
//	PUT /api/leads/{id}/draft
func (h *Handlers) EditLeadName(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.table.EditName(id, req.Name); err != nil {
		respondViewError(w, err)
		return
	}
	h.respondRow(w, id, httputil.OK)
}

// BlurLeadName commits the name draft if it changed.
//
//	POST /api/leads/{id}/blur
func (h *Handlers) BlurLeadName(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	saved, err := h.table.BlurName(r.Context(), id)
	if err != nil {
		respondViewError(w, err)
		return
	}
	row, err := h.table.Row(id)
	if err != nil {
		respondViewError(w, err)
		return
	}
	resp := BlurResponse{Saved: saved, Row: row}
	if saved {
		httputil.Accepted(w, resp)
		return
	}
	httputil.OK(w, resp)
}

// SetLeadStage commits a stage chosen in the table.
//
//	PUT /api/leads/{id}/stage
func (h *Handlers) SetLeadStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.table.SetStage(r.Context(), id, req.Stage); err != nil {
		respondViewError(w, err)
		return
	}
	h.respondRow(w, id, httputil.Accepted)
}

// ToggleLeadAutomation pauses or resumes automation for the lead.
//
//	POST /api/leads/{id}/automation
func (h *Handlers) ToggleLeadAutomation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.table.ToggleAutomation(r.Context(), id); err != nil {
		respondViewError(w, err)
		return
	}
	h.respondRow(w, id, httputil.Accepted)
}

// ToggleLeadAdvertisement flips the from-advertisement flag.
//
//	POST /api/leads/{id}/advertisement
func (h *Handlers) ToggleLeadAdvertisement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.table.ToggleAdvertisement(r.Context(), id); err != nil {
		respondViewError(w, err)
		return
	}
	h.respondRow(w, id, httputil.Accepted)
}

func (h *Handlers) respondRow(w http.ResponseWriter, id string, write func(http.ResponseWriter, any)) {
	row, err := h.table.Row(id)
	if err != nil {
		respondViewError(w, err)
		return
	}
	write(w, row)
}
