// Package leadtable holds the editable lead table: a filtered list of rows
// where every field commits optimistically and a failed write reloads the
// table from the store.
package leadtable

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/pkg/logger"
	"github.com/ignite/lead-console/internal/reconcile"
)

const viewName = "leadtable"

// Row is a lead as the table shows it.
type Row struct {
	Lead   domain.Lead          `json:"lead"`
	Draft  *string              `json:"draft,omitempty"`
	Fields map[Field]FieldState `json:"fields"`
}

// Table is the lead table view state. It owns its snapshot.
type Table struct {
	store  leadstore.Store
	runner *reconcile.Runner

	mu     sync.Mutex
	leads  []domain.Lead
	loaded bool
	filter string
	drafts map[string]string
	states map[string]map[Field]fieldState
	seq    uint64
}

// NewTable creates an empty table.
func NewTable(store leadstore.Store, runner *reconcile.Runner) *Table {
	return &Table{
		store:  store,
		runner: runner,
		drafts: make(map[string]string),
		states: make(map[string]map[Field]fieldState),
	}
}

// Load replaces the snapshot with the store's current records. A successful
// load puts every field of every row back to synced and drops drafts; a
// failed one leaves everything as it was.
func (t *Table) Load(ctx context.Context) error {
	leads, err := t.store.ListAll(ctx)
	if err != nil {
		logger.Error("lead table load failed", "error", err)
		return fmt.Errorf("load lead table: %w", err)
	}
	leads = domain.Dedupe(leads)

	t.mu.Lock()
	t.leads = leads
	t.loaded = true
	t.drafts = make(map[string]string)
	t.states = make(map[string]map[Field]fieldState)
	t.mu.Unlock()
	return nil
}

// Loaded reports whether a load has ever succeeded.
func (t *Table) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// SetFilter sets the search text. Matching is case-insensitive on the
// lead's name or identifier.
func (t *Table) SetFilter(q string) {
	t.mu.Lock()
	t.filter = q
	t.mu.Unlock()
}

// Filter returns the current search text.
func (t *Table) Filter() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter
}

// Empty reports whether the snapshot holds no leads at all.
func (t *Table) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.leads) == 0
}

// Rows returns the rows matching the table's filter, in snapshot order.
func (t *Table) Rows() []Row {
	return t.RowsMatching(t.Filter())
}

// RowsMatching returns the rows matching q without touching the table's
// filter, so concurrent readers with different searches do not interfere.
func (t *Table) RowsMatching(q string) []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	q = strings.ToLower(q)
	rows := []Row{}
	for _, l := range t.leads {
		if !matches(l, q) {
			continue
		}
		rows = append(rows, t.rowLocked(l))
	}
	return rows
}

// Row returns a single row regardless of the filter.
func (t *Table) Row(id string) (Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := domain.Find(t.leads, id)
	if i < 0 {
		return Row{}, domain.ErrLeadNotFound
	}
	return t.rowLocked(t.leads[i]), nil
}

func matches(l domain.Lead, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), q) || strings.Contains(strings.ToLower(l.ID), q)
}

func (t *Table) rowLocked(l domain.Lead) Row {
	r := Row{Lead: l, Fields: make(map[Field]FieldState, 4)}
	for _, f := range Fields() {
		r.Fields[f] = t.stateLocked(l.ID, f)
	}
	if d, ok := t.drafts[l.ID]; ok {
		r.Draft = &d
	}
	return r
}

func (t *Table) stateLocked(id string, f Field) FieldState {
	if fs, ok := t.states[id][f]; ok {
		return fs.state
	}
	return StateSynced
}

func (t *Table) setStateLocked(id string, f Field, s FieldState) uint64 {
	t.seq++
	if t.states[id] == nil {
		t.states[id] = make(map[Field]fieldState)
	}
	t.states[id][f] = fieldState{state: s, seq: t.seq}
	return t.seq
}

// EditName records a keystroke in the row's name draft. Nothing is written.
func (t *Table) EditName(id, draft string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if domain.Find(t.leads, id) < 0 {
		return domain.ErrLeadNotFound
	}
	t.drafts[id] = draft
	t.setStateLocked(id, FieldName, StateEditing)
	return nil
}

// BlurName ends a name edit. The draft is committed only when it differs
// from the current name; otherwise it is discarded. It reports whether a
// write was submitted.
func (t *Table) BlurName(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	i := domain.Find(t.leads, id)
	if i < 0 {
		t.mu.Unlock()
		return false, domain.ErrLeadNotFound
	}
	draft, ok := t.drafts[id]
	delete(t.drafts, id)
	if !ok || draft == t.leads[i].Name {
		if t.stateLocked(id, FieldName) == StateEditing {
			t.setStateLocked(id, FieldName, StateSynced)
		}
		t.mu.Unlock()
		return false, nil
	}
	t.mu.Unlock()

	return true, t.commit(ctx, id, FieldName, domain.NamePatch(draft))
}

// SetStage changes the lead's pipeline stage.
func (t *Table) SetStage(ctx context.Context, id string, stage domain.Stage) error {
	if !stage.Known() {
		return domain.ErrInvalidStage
	}
	return t.commit(ctx, id, FieldStage, domain.StagePatch(stage))
}

// ToggleAutomation pauses or resumes the lead's automation.
func (t *Table) ToggleAutomation(ctx context.Context, id string) error {
	return t.toggle(ctx, id, FieldAutomation, func(l domain.Lead) domain.Patch {
		return domain.PausedPatch(!l.Paused)
	})
}

// ToggleAdvertisement flips the from-advertisement flag.
func (t *Table) ToggleAdvertisement(ctx context.Context, id string) error {
	return t.toggle(ctx, id, FieldAdvertisement, func(l domain.Lead) domain.Patch {
		return domain.FromAdPatch(!l.FromAd)
	})
}

func (t *Table) toggle(ctx context.Context, id string, f Field, next func(domain.Lead) domain.Patch) error {
	t.mu.Lock()
	i := domain.Find(t.leads, id)
	if i < 0 {
		t.mu.Unlock()
		return domain.ErrLeadNotFound
	}
	patch := next(t.leads[i])
	t.mu.Unlock()
	return t.commit(ctx, id, f, patch)
}

// commit applies patch to the snapshot, marks the field saving and submits
// the write. Success returns the field to synced unless a newer edit has
// taken it over; failure marks it reload-pending and reloads the table.
func (t *Table) commit(ctx context.Context, id string, f Field, patch domain.Patch) error {
	t.mu.Lock()
	i := domain.Find(t.leads, id)
	if i < 0 {
		t.mu.Unlock()
		return domain.ErrLeadNotFound
	}
	patch.Apply(&t.leads[i])
	seq := t.setStateLocked(id, f, StateSaving)
	t.mu.Unlock()

	t.runner.Submit(ctx, reconcile.Write{
		View:   viewName,
		LeadID: id,
		Patch:  patch,
		OnDone: func(ctx context.Context, err error) {
			if err == nil {
				t.settle(id, f, seq, StateSynced)
				return
			}
			if t.settle(id, f, seq, StateReloadPending) {
				logger.Warn("reloading lead table after failed write", "lead_id", id, "field", string(f))
			}
			_ = t.Load(ctx)
		},
	})
	return nil
}

// settle moves a field out of saving if it is still owned by write seq.
func (t *Table) settle(id string, f Field, seq uint64, s FieldState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	fs, ok := t.states[id][f]
	if !ok || fs.seq != seq {
		return false
	}
	t.states[id][f] = fieldState{state: s, seq: seq}
	return true
}
