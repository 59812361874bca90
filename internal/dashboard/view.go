package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/pkg/logger"
	"github.com/ignite/lead-console/internal/reconcile"
)

const viewName = "dashboard"

// View is the dashboard's state. It loads its own snapshot and shares
// nothing with the other views.
type View struct {
	store  leadstore.Store
	runner *reconcile.Runner
	now    func() time.Time

	mu       sync.Mutex
	stats    Stats
	loaded   bool
	loadedAt time.Time
}

// NewView creates an empty dashboard view.
func NewView(store leadstore.Store, runner *reconcile.Runner) *View {
	return &View{store: store, runner: runner, now: time.Now}
}

// SetClock replaces the time source used for "today".
func (v *View) SetClock(now func() time.Time) {
	v.mu.Lock()
	v.now = now
	v.mu.Unlock()
}

// Load fetches a fresh snapshot and recomputes the stats. On failure the
// last successfully loaded stats stay in place.
func (v *View) Load(ctx context.Context) error {
	leads, err := v.store.ListAll(ctx)
	if err != nil {
		logger.Error("dashboard load failed", "error", err)
		return fmt.Errorf("load dashboard: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	v.stats = Compute(domain.Dedupe(leads), now)
	v.loaded = true
	v.loadedAt = now
	return nil
}

// Snapshot returns the current stats and whether a load has ever succeeded.
func (v *View) Snapshot() (Stats, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.stats
	s.Recent = append([]domain.Lead(nil), v.stats.Recent...)
	return s, v.loaded
}

// LoadedAt is the time of the last successful load.
func (v *View) LoadedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadedAt
}

// ToggleAutomation flips the automation flag of a lead in the recent list.
// Only the recent list is updated locally; if the store rejects the write
// the whole dashboard is reloaded.
func (v *View) ToggleAutomation(ctx context.Context, id string) (domain.Lead, error) {
	v.mu.Lock()
	i := domain.Find(v.stats.Recent, id)
	if i < 0 {
		v.mu.Unlock()
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	paused := !v.stats.Recent[i].Paused
	v.stats.Recent[i].Paused = paused
	lead := v.stats.Recent[i]
	v.mu.Unlock()

	v.runner.Submit(ctx, reconcile.Write{
		View:   viewName,
		LeadID: id,
		Patch:  domain.PausedPatch(paused),
		OnDone: func(ctx context.Context, err error) {
			if err == nil {
				return
			}
			// reload reverts the flip; its own failure is already logged
			_ = v.Load(ctx)
		},
	})
	return lead, nil
}
