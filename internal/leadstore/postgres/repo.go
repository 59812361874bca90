// Package postgres implements leadstore.Store directly against the
// PostgreSQL table behind the REST API.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/lib/pq"
)

// LeadRepo implements leadstore.Store against PostgreSQL.
type LeadRepo struct {
	db    *sql.DB
	table string
}

// NewLeadRepo creates a Postgres-backed lead repository for table.
func NewLeadRepo(db *sql.DB, table string) *LeadRepo {
	return &LeadRepo{db: db, table: pq.QuoteIdentifier(table)}
}

func (r *LeadRepo) ListAll(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT numero, COALESCE(nome, ''), created_at, COALESCE(status_ia, false),
		       COALESCE(pipeline, ''), COALESCE(anuncio, false), qualificacao
		FROM `+r.table+`
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("list leads: %w", err))
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var (
			l     domain.Lead
			stage string
			qual  []byte
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.Paused, &stage, &l.FromAd, &qual); err != nil {
			return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("scan lead: %w", err))
		}
		l.Stage, _ = domain.ParseStage(stage)
		l.RawStage = stage
		if len(qual) > 0 {
			if err := json.Unmarshal(qual, &l.Qualification); err != nil {
				return nil, leadstore.Wrap(leadstore.OpList, l.ID, fmt.Errorf("decode qualificacao: %w", err))
			}
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("iterate leads: %w", err))
	}
	return out, nil
}

func (r *LeadRepo) ApplyUpdate(ctx context.Context, id string, patch domain.Patch) error {
	if err := patch.Validate(); err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, err)
	}

	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if patch.Name != nil {
		add(domain.FieldName, *patch.Name)
	}
	if patch.Paused != nil {
		add(domain.FieldPaused, *patch.Paused)
	}
	if patch.Stage != nil {
		add(domain.FieldStage, patch.Stage.String())
	}
	if patch.FromAd != nil {
		add(domain.FieldFromAd, *patch.FromAd)
	}

	q := fmt.Sprintf("UPDATE %s SET %s WHERE numero = $%d", r.table, strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, fmt.Errorf("update lead: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return leadstore.Wrap(leadstore.OpUpdate, id, leadstore.ErrNotFound)
	}
	return nil
}

// Ping checks the connection.
func (r *LeadRepo) Ping(ctx context.Context) error {
	return leadstore.Wrap(leadstore.OpPing, "", r.db.PingContext(ctx))
}
