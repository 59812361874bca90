package api

import (
	"net/http"

	"github.com/ignite/lead-console/internal/dashboard"
	"github.com/ignite/lead-console/internal/leadtable"
	"github.com/ignite/lead-console/internal/pipeline"
	"github.com/ignite/lead-console/internal/pkg/httputil"
)

// Handlers contains all HTTP handlers. Each view keeps its own snapshot.
type Handlers struct {
	dashboard *dashboard.View
	board     *pipeline.Board
	table     *leadtable.Table
}

// NewHandlers creates a new Handlers instance
func NewHandlers(dash *dashboard.View, board *pipeline.Board, table *leadtable.Table) *Handlers {
	return &Handlers{
		dashboard: dash,
		board:     board,
		table:     table,
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	httputil.JSON(w, status, data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	httputil.Error(w, status, message)
}
