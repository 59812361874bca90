// Package redisstore keeps leads in Redis: one hash per lead plus a sorted
// set indexing identifiers by creation time.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/redis/go-redis/v9"
)

// updateScript writes fields only when the lead hash already exists, so an
// update can never create a half-populated record.
var updateScript = redis.NewScript(`
	if redis.call("exists", KEYS[1]) == 1 then
		redis.call("hset", KEYS[1], unpack(ARGV))
		return 1
	else
		return 0
	end
`)

// Store implements leadstore.Store on Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a store whose keys start with prefix.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) leadKey(id string) string { return fmt.Sprintf("%s:lead:%s", s.prefix, id) }
func (s *Store) indexKey() string         { return s.prefix + ":by_created" }

// ListAll reads the index newest first and fetches every hash in one
// pipeline. Index entries whose hash is gone are skipped.
func (s *Store) ListAll(ctx context.Context) ([]domain.Lead, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("read index: %w", err))
	}
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.leadKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("read leads: %w", err))
	}

	out := make([]domain.Lead, 0, len(ids))
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			continue
		}
		l, err := decode(h)
		if err != nil {
			return nil, leadstore.Wrap(leadstore.OpList, ids[i], err)
		}
		out = append(out, l)
	}
	return out, nil
}

// ApplyUpdate sets the patched hash fields atomically.
func (s *Store) ApplyUpdate(ctx context.Context, id string, patch domain.Patch) error {
	if err := patch.Validate(); err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, err)
	}

	args := make([]interface{}, 0, 8)
	for field, val := range patch.Fields() {
		args = append(args, field, encodeValue(val))
	}

	n, err := updateScript.Run(ctx, s.client, []string{s.leadKey(id)}, args...).Int()
	if err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, fmt.Errorf("update lead: %w", err))
	}
	if n == 0 {
		return leadstore.Wrap(leadstore.OpUpdate, id, leadstore.ErrNotFound)
	}
	return nil
}

// Save writes a complete lead and indexes it. Record creation belongs to
// the ingest process; the console only calls this from fixtures.
func (s *Store) Save(ctx context.Context, l domain.Lead) error {
	fields, err := encode(l)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.leadKey(l.ID), fields)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(l.CreatedAt.UnixMilli()), Member: l.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save lead %s: %w", l.ID, err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return leadstore.Wrap(leadstore.OpPing, "", s.client.Ping(ctx).Err())
}

func encodeValue(v interface{}) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func encode(l domain.Lead) (map[string]interface{}, error) {
	qual := ""
	if l.Qualification != nil {
		b, err := json.Marshal(l.Qualification)
		if err != nil {
			return nil, fmt.Errorf("encode qualificacao: %w", err)
		}
		qual = string(b)
	}
	return map[string]interface{}{
		domain.FieldID:            l.ID,
		domain.FieldName:          l.Name,
		domain.FieldCreatedAt:     l.CreatedAt.Format(time.RFC3339Nano),
		domain.FieldPaused:        strconv.FormatBool(l.Paused),
		domain.FieldStage:         l.StageLabel(),
		domain.FieldFromAd:        strconv.FormatBool(l.FromAd),
		domain.FieldQualification: qual,
	}, nil
}

func decode(h map[string]string) (domain.Lead, error) {
	created, err := domain.ParseTimestamp(h[domain.FieldCreatedAt])
	if err != nil {
		return domain.Lead{}, err
	}
	l := domain.Lead{
		ID:        h[domain.FieldID],
		Name:      h[domain.FieldName],
		CreatedAt: created,
		Paused:    h[domain.FieldPaused] == "true",
		RawStage:  h[domain.FieldStage],
		FromAd:    h[domain.FieldFromAd] == "true",
	}
	l.Stage, _ = domain.ParseStage(l.RawStage)
	if q := h[domain.FieldQualification]; q != "" {
		if err := json.Unmarshal([]byte(q), &l.Qualification); err != nil {
			return domain.Lead{}, fmt.Errorf("decode qualificacao: %w", err)
		}
	}
	return l, nil
}
