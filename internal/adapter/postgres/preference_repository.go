package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/linaspasv/cms/internal/domain"
)

// PreferenceRepo stores one YAML preferences document per scope.
type PreferenceRepo struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

var _ domain.PreferenceRepository = (*PreferenceRepo)(nil)

func NewPreferenceRepo(pool *pgxpool.Pool, clock clockwork.Clock) *PreferenceRepo {
	return &PreferenceRepo{pool: pool, clock: clock}
}

func (r *PreferenceRepo) Get(ctx context.Context, scope domain.PreferenceScope) ([]byte, error) {
	var document string
	err := r.pool.QueryRow(ctx,
		`SELECT document FROM preferences WHERE kind = $1 AND scope_key = $2`,
		string(scope.Kind), scope.Key,
	).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s preferences: %w", scope, err)
	}
	return []byte(document), nil
}

func (r *PreferenceRepo) Put(ctx context.Context, scope domain.PreferenceScope, document []byte) error {
	now := r.clock.Now()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO preferences (kind, scope_key, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (kind, scope_key) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		string(scope.Kind), scope.Key, string(document), now,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s preferences: %w", scope, err)
	}
	return nil
}

func (r *PreferenceRepo) Delete(ctx context.Context, scope domain.PreferenceScope) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM preferences WHERE kind = $1 AND scope_key = $2`,
		string(scope.Kind), scope.Key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s preferences: %w", scope, err)
	}
	return nil
}
