package leadtable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore/memstore"
	"github.com/ignite/lead-console/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func testLeads() []domain.Lead {
	mk := func(id, name string, age int) domain.Lead {
		l := domain.Lead{ID: id, Name: name, CreatedAt: base.Add(-time.Duration(age) * time.Hour)}
		l.SetStage(domain.StageNew)
		return l
	}
	return []domain.Lead{
		mk("5511900000001", "Maria Souza", 1),
		mk("5511900000002", "João Lima", 2),
		mk("5521900000003", "Ana Maria", 3),
	}
}

func setupTable(t *testing.T, leads ...domain.Lead) (*Table, *memstore.Store) {
	t.Helper()
	store := memstore.New(leads...)
	tbl := NewTable(store, reconcile.NewRunner(store))
	require.NoError(t, tbl.Load(context.Background()))
	return tbl, store
}

func rowIDs(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Lead.ID)
	}
	return out
}

func TestRows_Filter(t *testing.T) {
	tbl, _ := setupTable(t, testLeads()...)

	tests := []struct {
		name string
		q    string
		want []string
	}{
		{"empty filter shows all", "", []string{"5511900000001", "5511900000002", "5521900000003"}},
		{"name case insensitive", "MARIA", []string{"5511900000001", "5521900000003"}},
		{"identifier substring", "5521", []string{"5521900000003"}},
		{"no match", "pedro", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl.SetFilter(tt.q)
			assert.Equal(t, tt.want, rowIDs(tbl.Rows()))
			assert.Equal(t, tt.q, tbl.Filter())
		})
	}
}

func TestRows_AllFieldsStartSynced(t *testing.T) {
	tbl, _ := setupTable(t, testLeads()...)

	for _, r := range tbl.Rows() {
		for _, f := range Fields() {
			assert.Equal(t, StateSynced, r.Fields[f])
		}
		assert.Nil(t, r.Draft)
	}
}

func TestEmptyStore(t *testing.T) {
	tbl, _ := setupTable(t)

	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Rows())
	assert.NotNil(t, tbl.Rows())
}

func TestEditName_DraftOnly(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000001"

	require.NoError(t, tbl.EditName(id, "Maria S"))
	require.NoError(t, tbl.EditName(id, "Maria Santos"))

	r, err := tbl.Row(id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", r.Lead.Name)
	require.NotNil(t, r.Draft)
	assert.Equal(t, "Maria Santos", *r.Draft)
	assert.Equal(t, StateEditing, r.Fields[FieldName])

	tbl.runner.Wait()
	assert.Empty(t, store.Writes())
}

func TestBlurName_Commits(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000001"
	release := make(chan struct{})
	store.OnUpdate(func(context.Context, string, domain.Patch) error {
		<-release
		return nil
	})

	require.NoError(t, tbl.EditName(id, "Maria Santos"))
	wrote, err := tbl.BlurName(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, wrote)

	r, _ := tbl.Row(id)
	assert.Equal(t, "Maria Santos", r.Lead.Name)
	assert.Nil(t, r.Draft)
	assert.Equal(t, StateSaving, r.Fields[FieldName])

	close(release)
	tbl.runner.Wait()

	r, _ = tbl.Row(id)
	assert.Equal(t, StateSynced, r.Fields[FieldName])
	stored, _ := store.Get(id)
	assert.Equal(t, "Maria Santos", stored.Name)
}

func TestBlurName_UnchangedDraftDiscarded(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000001"

	require.NoError(t, tbl.EditName(id, "Maria Souza"))
	wrote, err := tbl.BlurName(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, wrote)

	r, _ := tbl.Row(id)
	assert.Equal(t, StateSynced, r.Fields[FieldName])
	assert.Nil(t, r.Draft)
	tbl.runner.Wait()
	assert.Empty(t, store.Writes())
}

func TestBlurName_WithoutEditIsNoop(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)

	wrote, err := tbl.BlurName(context.Background(), "5511900000002")
	require.NoError(t, err)
	assert.False(t, wrote)
	tbl.runner.Wait()
	assert.Empty(t, store.Writes())
}

func TestBlurName_FailureRestoresStoredName(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000001"
	release := make(chan struct{})
	store.OnUpdate(func(context.Context, string, domain.Patch) error {
		<-release
		return errors.New("violates check constraint")
	})

	require.NoError(t, tbl.EditName(id, "Maria Santos"))
	_, err := tbl.BlurName(context.Background(), id)
	require.NoError(t, err)

	r, _ := tbl.Row(id)
	assert.Equal(t, "Maria Santos", r.Lead.Name)

	close(release)
	tbl.runner.Wait()

	r, _ = tbl.Row(id)
	assert.Equal(t, "Maria Souza", r.Lead.Name)
	assert.Equal(t, StateSynced, r.Fields[FieldName])
	assert.Equal(t, 2, store.Lists())
}

func TestFailedWriteWithFailedReloadStaysPending(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000002"
	store.OnUpdate(func(context.Context, string, domain.Patch) error {
		return errors.New("jwt expired")
	})
	store.FailLists(errors.New("jwt expired"))

	require.NoError(t, tbl.ToggleAutomation(context.Background(), id))
	tbl.runner.Wait()

	r, _ := tbl.Row(id)
	assert.Equal(t, StateReloadPending, r.Fields[FieldAutomation])
	assert.Equal(t, StateSynced, r.Fields[FieldStage])

	store.FailLists(nil)
	require.NoError(t, tbl.Load(context.Background()))
	r, _ = tbl.Row(id)
	assert.Equal(t, StateSynced, r.Fields[FieldAutomation])
	assert.False(t, r.Lead.Paused)
}

func TestSetStage(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5521900000003"

	require.NoError(t, tbl.SetStage(context.Background(), id, domain.StageProposalSent))
	r, _ := tbl.Row(id)
	assert.Equal(t, domain.StageProposalSent, r.Lead.Stage)
	assert.Equal(t, "proposta enviada", r.Lead.RawStage)

	tbl.runner.Wait()
	require.Len(t, store.Writes(), 1)
	assert.Equal(t, domain.StagePatch(domain.StageProposalSent), store.Writes()[0].Patch)
}

func TestSetStage_Invalid(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)

	err := tbl.SetStage(context.Background(), "5521900000003", domain.StageUnknown)
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
	tbl.runner.Wait()
	assert.Empty(t, store.Writes())
}

func TestToggles(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000002"

	require.NoError(t, tbl.ToggleAutomation(context.Background(), id))
	require.NoError(t, tbl.ToggleAdvertisement(context.Background(), id))

	r, _ := tbl.Row(id)
	assert.True(t, r.Lead.Paused)
	assert.True(t, r.Lead.FromAd)

	tbl.runner.Wait()
	stored, _ := store.Get(id)
	assert.True(t, stored.Paused)
	assert.True(t, stored.FromAd)

	r, _ = tbl.Row(id)
	assert.Equal(t, StateSynced, r.Fields[FieldAutomation])
	assert.Equal(t, StateSynced, r.Fields[FieldAdvertisement])
}

func TestSameValueTwiceLeavesStoreUnchanged(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000001"

	require.NoError(t, tbl.SetStage(context.Background(), id, domain.StageClosed))
	tbl.runner.Wait()
	first, _ := store.Get(id)

	require.NoError(t, tbl.SetStage(context.Background(), id, domain.StageClosed))
	tbl.runner.Wait()
	second, _ := store.Get(id)

	assert.Equal(t, first, second)
}

func TestUnknownLead(t *testing.T) {
	tbl, _ := setupTable(t, testLeads()...)
	ctx := context.Background()

	assert.ErrorIs(t, tbl.EditName("nope", "x"), domain.ErrLeadNotFound)
	_, err := tbl.BlurName(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
	assert.ErrorIs(t, tbl.SetStage(ctx, "nope", domain.StageNew), domain.ErrLeadNotFound)
	assert.ErrorIs(t, tbl.ToggleAutomation(ctx, "nope"), domain.ErrLeadNotFound)
	assert.ErrorIs(t, tbl.ToggleAdvertisement(ctx, "nope"), domain.ErrLeadNotFound)
	_, err = tbl.Row("nope")
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
}

func TestLateCompletionDoesNotOverrideNewerEdit(t *testing.T) {
	tbl, store := setupTable(t, testLeads()...)
	id := "5511900000001"
	release := make(chan struct{})
	store.OnUpdate(func(context.Context, string, domain.Patch) error {
		<-release
		return nil
	})

	require.NoError(t, tbl.EditName(id, "First"))
	_, err := tbl.BlurName(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, tbl.EditName(id, "Second"))

	close(release)
	tbl.runner.Wait()

	r, _ := tbl.Row(id)
	assert.Equal(t, StateEditing, r.Fields[FieldName])
	require.NotNil(t, r.Draft)
	assert.Equal(t, "Second", *r.Draft)
}

func TestRowsMatching_LeavesFilterAlone(t *testing.T) {
	tbl, _ := setupTable(t, testLeads()...)
	tbl.SetFilter("joão")

	assert.Equal(t, []string{"5511900000001", "5521900000003"}, rowIDs(tbl.RowsMatching("maria")))
	assert.Equal(t, []string{"5511900000002"}, rowIDs(tbl.RowsMatching("JOÃO")))
	assert.Equal(t, "joão", tbl.Filter())
	assert.Equal(t, []string{"5511900000002"}, rowIDs(tbl.Rows()))
}
