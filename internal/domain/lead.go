package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire column names of the temp_leads table.
const (
	FieldID            = "numero"
	FieldName          = "nome"
	FieldCreatedAt     = "created_at"
	FieldPaused        = "status_ia"
	FieldStage         = "pipeline"
	FieldFromAd        = "anuncio"
	FieldQualification = "qualificacao"
)

// DayLayout is the ISO date used to bucket leads by creation day.
const DayLayout = "2006-01-02"

// Lead is a prospective customer tracked through the sales pipeline.
// Records are created and deleted outside the console; only Name, Paused,
// Stage and FromAd are ever written back.
type Lead struct {
	ID        string
	Name      string
	CreatedAt time.Time
	// Paused is stored inverted: true means the automation is paused.
	Paused bool
	Stage  Stage
	// RawStage is the label exactly as stored, kept so that an unknown
	// stage is shown verbatim.
	RawStage      string
	FromAd        bool
	Qualification map[string]any
}

// AutomationActive reports whether the lead's automation is running.
func (l Lead) AutomationActive() bool { return !l.Paused }

// CreatedDay is the date part of the stored timestamp, e.g. "2026-10-16".
// The offset the store wrote is kept, so this matches the string prefix.
func (l Lead) CreatedDay() string { return l.CreatedAt.Format(DayLayout) }

// StageLabel is the label to display for the lead's stage.
func (l Lead) StageLabel() string {
	if l.Stage.Known() {
		return l.Stage.String()
	}
	return l.RawStage
}

// SetStage assigns a known stage and keeps RawStage in step.
func (l *Lead) SetStage(s Stage) {
	l.Stage = s
	l.RawStage = s.String()
}

type leadJSON struct {
	ID            string         `json:"numero"`
	Name          string         `json:"nome"`
	CreatedAt     string         `json:"created_at"`
	Paused        bool           `json:"status_ia"`
	Pipeline      string         `json:"pipeline"`
	FromAd        bool           `json:"anuncio"`
	Qualification map[string]any `json:"qualificacao"`
}

// MarshalJSON writes the record in its stored shape.
func (l Lead) MarshalJSON() ([]byte, error) {
	w := leadJSON{
		ID:            l.ID,
		Name:          l.Name,
		Paused:        l.Paused,
		Pipeline:      l.StageLabel(),
		FromAd:        l.FromAd,
		Qualification: l.Qualification,
	}
	if !l.CreatedAt.IsZero() {
		w.CreatedAt = l.CreatedAt.Format(time.RFC3339Nano)
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a stored record. Unknown stage labels are kept in
// RawStage with Stage set to StageUnknown.
func (l *Lead) UnmarshalJSON(data []byte) error {
	var w leadJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	created, err := ParseTimestamp(w.CreatedAt)
	if err != nil {
		return fmt.Errorf("lead %s: %w", w.ID, err)
	}
	st, _ := ParseStage(w.Pipeline)
	*l = Lead{
		ID:            w.ID,
		Name:          w.Name,
		CreatedAt:     created,
		Paused:        w.Paused,
		Stage:         st,
		RawStage:      w.Pipeline,
		FromAd:        w.FromAd,
		Qualification: w.Qualification,
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts the ISO-8601 variants PostgreSQL and PostgREST
// emit. Values without an offset are taken as UTC. An empty string yields
// the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Dedupe drops records whose identifier already appeared earlier in the
// slice, preserving order.
func Dedupe(leads []Lead) []Lead {
	seen := make(map[string]struct{}, len(leads))
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Find returns the index of the lead with the given id, or -1.
func Find(leads []Lead, id string) int {
	for i := range leads {
		if leads[i].ID == id {
			return i
		}
	}
	return -1
}
