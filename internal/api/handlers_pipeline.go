package api

import (
	"net/http"

	"github.com/ignite/lead-console/internal/pipeline"
	"github.com/ignite/lead-console/internal/pkg/httputil"
)

// PipelineResponse is the board payload.
type PipelineResponse struct {
	Columns []pipeline.Column `json:"columns"`
}

// MoveResponse reports a drag result and the board after it.
type MoveResponse struct {
	Moved   bool              `json:"moved"`
	Columns []pipeline.Column `json:"columns"`
}

// GetPipeline returns the six stage columns, loading the board on first use.
//
//	GET /api/pipeline
func (h *Handlers) GetPipeline(w http.ResponseWriter, r *http.Request) {
	if !h.board.Loaded() {
		if err := h.board.Load(r.Context()); err != nil {
			respondViewError(w, err)
			return
		}
	}
	httputil.OK(w, PipelineResponse{Columns: h.board.Columns()})
}

// RefreshPipeline reloads the board from the store.
//
//	POST /api/pipeline/refresh
func (h *Handlers) RefreshPipeline(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Load(r.Context()); err != nil {
		respondViewError(w, err)
		return
	}
	httputil.OK(w, PipelineResponse{Columns: h.board.Columns()})
}

// MoveLead applies a drag-and-drop event.
//
//	POST /api/pipeline/move
func (h *Handlers) MoveLead(w http.ResponseWriter, r *http.Request) {
	var ev pipeline.MoveEvent
	if !httputil.Decode(w, r, &ev) {
		return
	}
	if ev.LeadID == "" {
		respondError(w, http.StatusBadRequest, "leadId is required")
		return
	}

	moved, err := h.board.Move(r.Context(), ev)
	if err != nil {
		respondViewError(w, err)
		return
	}
	resp := MoveResponse{Moved: moved, Columns: h.board.Columns()}
	if moved {
		httputil.Accepted(w, resp)
		return
	}
	httputil.OK(w, resp)
}
