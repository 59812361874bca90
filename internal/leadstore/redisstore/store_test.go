package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return New(client, "leads"), mr
}

var base = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store, leads ...domain.Lead) {
	t.Helper()
	for _, l := range leads {
		require.NoError(t, s.Save(context.Background(), l))
	}
}

func TestListAll_NewestFirst(t *testing.T) {
	s, _ := setupTestRedis(t)
	seed(t, s,
		domain.Lead{ID: "1", Name: "Ana", CreatedAt: base.Add(-2 * time.Hour), Stage: domain.StageNew, RawStage: "novo lead"},
		domain.Lead{ID: "2", Name: "Bia", CreatedAt: base, Paused: true, FromAd: true, Stage: domain.StageClosed, RawStage: "fechado",
			Qualification: map[string]any{"budget": "high"}},
	)

	leads, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "2", leads[0].ID)
	assert.True(t, leads[0].Paused)
	assert.True(t, leads[0].FromAd)
	assert.Equal(t, domain.StageClosed, leads[0].Stage)
	assert.Equal(t, "high", leads[0].Qualification["budget"])
	assert.True(t, base.Equal(leads[0].CreatedAt))

	assert.Equal(t, "1", leads[1].ID)
	assert.Nil(t, leads[1].Qualification)
}

func TestListAll_Empty(t *testing.T) {
	s, _ := setupTestRedis(t)
	leads, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestListAll_SkipsDanglingIndex(t *testing.T) {
	s, mr := setupTestRedis(t)
	seed(t, s, domain.Lead{ID: "1", CreatedAt: base})
	mr.ZAdd("leads:by_created", float64(base.Add(time.Hour).UnixMilli()), "ghost")

	leads, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "1", leads[0].ID)
}

func TestApplyUpdate(t *testing.T) {
	s, mr := setupTestRedis(t)
	seed(t, s, domain.Lead{ID: "1", Name: "Ana", CreatedAt: base, Stage: domain.StageNew, RawStage: "novo lead"})
	ctx := context.Background()

	require.NoError(t, s.ApplyUpdate(ctx, "1", domain.StagePatch(domain.StageProposalSent)))
	require.NoError(t, s.ApplyUpdate(ctx, "1", domain.PausedPatch(true)))

	assert.Equal(t, "proposta enviada", mr.HGet("leads:lead:1", "pipeline"))
	assert.Equal(t, "true", mr.HGet("leads:lead:1", "status_ia"))
	assert.Equal(t, "Ana", mr.HGet("leads:lead:1", "nome"))
}

func TestApplyUpdate_NotFoundCreatesNothing(t *testing.T) {
	s, mr := setupTestRedis(t)

	err := s.ApplyUpdate(context.Background(), "missing", domain.NamePatch("x"))
	assert.ErrorIs(t, err, leadstore.ErrNotFound)
	assert.True(t, leadstore.IsStoreError(err))
	assert.False(t, mr.Exists("leads:lead:missing"))
}

func TestApplyUpdate_ConnectionFailure(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	err := s.ApplyUpdate(context.Background(), "1", domain.NamePatch("x"))
	assert.True(t, leadstore.IsStoreError(err))

	_, err = s.ListAll(context.Background())
	assert.True(t, leadstore.IsStoreError(err))
	assert.True(t, leadstore.IsStoreError(s.Ping(context.Background())))
}
