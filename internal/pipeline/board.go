// Package pipeline holds the pipeline board: leads grouped into the fixed
// stage columns, with drag-and-drop stage reassignment.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/pkg/logger"
	"github.com/ignite/lead-console/internal/reconcile"
)

const viewName = "pipeline"

// Column is one stage of the board.
type Column struct {
	Stage domain.Stage  `json:"id"`
	Title string        `json:"title"`
	Color string        `json:"color"`
	Leads []domain.Lead `json:"leads"`
}

// MoveEvent describes a finished drag. To is StageUnknown when the card was
// dropped outside every column.
type MoveEvent struct {
	LeadID    string       `json:"leadId"`
	From      domain.Stage `json:"from"`
	FromIndex int          `json:"fromIndex"`
	To        domain.Stage `json:"to"`
	Index     int          `json:"index"`
}

// noop reports whether the drag leaves the lead where it was.
func (e MoveEvent) noop() bool {
	if !e.To.Known() {
		return true
	}
	return e.From == e.To && e.FromIndex == e.Index
}

// Board is the pipeline view state. It owns its snapshot.
type Board struct {
	store  leadstore.Store
	runner *reconcile.Runner

	mu     sync.Mutex
	leads  []domain.Lead
	loaded bool
}

// NewBoard creates an empty board.
func NewBoard(store leadstore.Store, runner *reconcile.Runner) *Board {
	return &Board{store: store, runner: runner}
}

// Load replaces the snapshot. On failure the previous snapshot is kept.
func (b *Board) Load(ctx context.Context) error {
	leads, err := b.store.ListAll(ctx)
	if err != nil {
		logger.Error("pipeline load failed", "error", err)
		return fmt.Errorf("load pipeline: %w", err)
	}
	leads = domain.Dedupe(leads)

	b.mu.Lock()
	b.leads = leads
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Loaded reports whether a load has ever succeeded.
func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Columns groups the snapshot into the six stage columns. Each column keeps
// snapshot order. Leads with an unrecognised stage are not shown.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()

	stages := domain.Stages()
	cols := make([]Column, len(stages))
	index := make(map[domain.Stage]int, len(stages))
	for i, st := range stages {
		cols[i] = Column{Stage: st, Title: st.Title(), Color: st.Color(), Leads: []domain.Lead{}}
		index[st] = i
	}
	for _, l := range b.leads {
		if i, ok := index[l.Stage]; ok {
			cols[i].Leads = append(cols[i].Leads, l)
		}
	}
	return cols
}

// Move applies a drag. The stage change lands in the snapshot before the
// store write is submitted; a failed write reloads the whole board. It
// reports whether anything was written.
func (b *Board) Move(ctx context.Context, ev MoveEvent) (bool, error) {
	if ev.noop() {
		return false, nil
	}

	b.mu.Lock()
	i := domain.Find(b.leads, ev.LeadID)
	if i < 0 {
		b.mu.Unlock()
		return false, domain.ErrLeadNotFound
	}
	b.leads[i].SetStage(ev.To)
	b.mu.Unlock()

	logger.Debug("lead moved", "lead_id", ev.LeadID, "from", ev.From.String(), "to", ev.To.String())
	b.runner.Submit(ctx, reconcile.Write{
		View:   viewName,
		LeadID: ev.LeadID,
		Patch:  domain.StagePatch(ev.To),
		OnDone: func(ctx context.Context, err error) {
			if err != nil {
				_ = b.Load(ctx)
			}
		},
	})
	return true, nil
}
