package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// DefaultProfile keys the single-user preference row.
const DefaultProfile = "default"

type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

func (r *PreferenceRepository) Get(ctx context.Context) (model.UserPreferences, error) {
	var prefs model.UserPreferences
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(last_used_card_id, '') FROM user_preferences WHERE id = $1`, DefaultProfile).
		Scan(&prefs.LastUsedCardID)
	if errors.Is(err, pgx.ErrNoRows) {
		return prefs, nil
	}
	return prefs, err
}

func (r *PreferenceRepository) SetLastUsedCard(ctx context.Context, cardID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_preferences (id, last_used_card_id) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET last_used_card_id = EXCLUDED.last_used_card_id, updated_at = NOW()`,
		DefaultProfile, cardID)
	return err
}
