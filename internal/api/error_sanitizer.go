package api

import (
	"errors"
	"net/http"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/pkg/httputil"
)

// respondViewError maps a view or store error to a status code. Store
// failures never reach the client verbatim.
func respondViewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLeadNotFound):
		httputil.NotFound(w, "lead not found")
	case errors.Is(err, domain.ErrInvalidStage):
		httputil.BadRequest(w, err.Error())
	case leadstore.IsStoreError(err):
		httputil.BadGateway(w, err)
	default:
		httputil.InternalError(w, err)
	}
}
