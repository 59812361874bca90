// Package reconcile runs the remote half of an optimistic edit.
//
// A view applies a change to its own snapshot first and then hands the
// write to a Runner. The Runner performs exactly one ApplyUpdate on its own
// goroutine and reports the outcome; on failure the view discards all of
// its local optimism by reloading the full snapshot.
package reconcile

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/pkg/logger"
)

// Write is one pending remote update.
type Write struct {
	View   string
	LeadID string
	Patch  domain.Patch
	// OnDone receives nil on success or the StoreError. It runs on the
	// runner's goroutine.
	OnDone func(ctx context.Context, err error)
}

// Runner executes writes asynchronously. Writes are independent and may
// finish in any order.
type Runner struct {
	store leadstore.Store
	wg    sync.WaitGroup
}

// NewRunner creates a runner writing to store.
func NewRunner(store leadstore.Store) *Runner {
	return &Runner{store: store}
}

// Submit starts w and returns its operation id immediately. The write is
// detached from ctx cancellation: a browser request finishing must not
// abort the store call. Values carried by ctx are kept.
func (r *Runner) Submit(ctx context.Context, w Write) string {
	opID := uuid.New().String()
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		logger.Debug("store write started", "op_id", opID, "view", w.View, "lead_id", w.LeadID)
		err := r.store.ApplyUpdate(ctx, w.LeadID, w.Patch)
		if err != nil {
			logger.Error("store write failed", "op_id", opID, "view", w.View, "lead_id", w.LeadID, "error", err)
		}
		if w.OnDone != nil {
			w.OnDone(ctx, err)
		}
	}()
	return opID
}

// Wait blocks until every submitted write, including its OnDone callback,
// has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
