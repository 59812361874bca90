package leadstore

import (
	"context"

	"github.com/ignite/lead-console/internal/domain"
)

// Store defines the data access contract for the lead table.
type Store interface {
	// ListAll returns every lead ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]domain.Lead, error)

	// ApplyUpdate writes only the fields set in patch to the lead with the
	// given id. The write is all-or-nothing from the caller's point of view.
	ApplyUpdate(ctx context.Context, id string, patch domain.Patch) error
}

// Pinger is implemented by drivers that can report reachability cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}
