package domain

import (
	"fmt"
	"strings"
)

// Stage is a pipeline stage. The set is closed: anything the store holds
// outside the six known labels decodes to StageUnknown.
type Stage uint8

const (
	StageUnknown Stage = iota
	StageNew
	StageContacted
	StageQualified
	StageProposalSent
	StageClosed
	StageLost
)

// NeutralColor is used for any stage without a display color.
const NeutralColor = "#6b7280"

var stageLabels = map[Stage]string{
	StageNew:          "novo lead",
	StageContacted:    "em atendimento",
	StageQualified:    "qualificado",
	StageProposalSent: "proposta enviada",
	StageClosed:       "fechado",
	StageLost:         "perdido",
}

// Stages returns the six board columns in pipeline order.
func Stages() []Stage {
	return []Stage{StageNew, StageContacted, StageQualified, StageProposalSent, StageClosed, StageLost}
}

// ParseStage maps a stored label to its Stage. Matching is exact, as the
// store compares labels byte for byte.
func ParseStage(label string) (Stage, bool) {
	for st, l := range stageLabels {
		if l == label {
			return st, true
		}
	}
	return StageUnknown, false
}

// Known reports whether s is one of the six pipeline stages.
func (s Stage) Known() bool {
	_, ok := stageLabels[s]
	return ok
}

// String returns the stored label, or "" for StageUnknown.
func (s Stage) String() string { return stageLabels[s] }

// Title is the upper-cased label used on charts and badges.
func (s Stage) Title() string { return strings.ToUpper(s.String()) }

// Color returns the chart color for the stage.
func (s Stage) Color() string {
	switch s {
	case StageNew:
		return "#3b82f6"
	case StageContacted:
		return "#f59e0b"
	case StageQualified:
		return "#a855f7"
	case StageProposalSent:
		return "#06b6d4"
	case StageClosed:
		return "#10b981"
	case StageLost:
		return "#ef4444"
	default:
		return NeutralColor
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike record decoding,
// which tolerates unknown labels, an explicit stage in a request must be valid.
func (s *Stage) UnmarshalText(text []byte) error {
	st, ok := ParseStage(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStage, string(text))
	}
	*s = st
	return nil
}
