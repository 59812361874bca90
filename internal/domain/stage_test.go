package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages_FixedOrder(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, 6)
	want := []string{"novo lead", "em atendimento", "qualificado", "proposta enviada", "fechado", "perdido"}
	for i, st := range stages {
		assert.Equal(t, want[i], st.String())
		assert.True(t, st.Known())
	}
}

func TestParseStage(t *testing.T) {
	st, ok := ParseStage("proposta enviada")
	assert.True(t, ok)
	assert.Equal(t, StageProposalSent, st)

	st, ok = ParseStage("Proposta Enviada")
	assert.False(t, ok)
	assert.Equal(t, StageUnknown, st)

	_, ok = ParseStage("")
	assert.False(t, ok)
}

func TestStage_Colors(t *testing.T) {
	assert.Equal(t, "#3b82f6", StageNew.Color())
	assert.Equal(t, "#06b6d4", StageProposalSent.Color())
	assert.Equal(t, "#ef4444", StageLost.Color())
	assert.Equal(t, NeutralColor, StageUnknown.Color())
	assert.Equal(t, NeutralColor, Stage(42).Color())
}

func TestStage_Title(t *testing.T) {
	assert.Equal(t, "NOVO LEAD", StageNew.Title())
	assert.Equal(t, "", StageUnknown.Title())
}

func TestStage_TextRoundTrip(t *testing.T) {
	var req struct {
		To Stage `json:"to"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"to":"fechado"}`), &req))
	assert.Equal(t, StageClosed, req.To)

	err := json.Unmarshal([]byte(`{"to":"archived"}`), &req)
	assert.ErrorIs(t, err, ErrInvalidStage)

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"to":"fechado"}`, string(out))
}
