package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deskline/backend/internal/models"
)

// Flags is the feature-flag lookup used to gate operator actions. Lookups
// are total: an absent key or a failed query yields the default, never an
// error.
type Flags struct {
	Store  *Store
	Logger zerolog.Logger
}

func (f *Flags) IsEnabled(ctx context.Context, key string, def bool) bool {
	var enabled bool
	err := f.Store.Pool.QueryRow(ctx, `SELECT enabled FROM feature_flags WHERE key = $1`, key).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return def
	}
	if err != nil {
		f.Logger.Warn().Err(err).Str("flag", key).Msg("flag lookup failed, using default")
		return def
	}
	return enabled
}

func (s *Store) ListFlags(ctx context.Context) ([]models.FeatureFlag, error) {
	rows, err := s.Pool.Query(ctx, `SELECT key, enabled, updated_at FROM feature_flags ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FeatureFlag
	for rows.Next() {
		var f models.FeatureFlag
		if err := rows.Scan(&f.Key, &f.Enabled, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) SetFlag(ctx context.Context, key string, enabled bool) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO feature_flags (key, enabled, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()
	`, key, enabled)
	return err
}

func (s *Store) ListUITexts(ctx context.Context) ([]models.UIText, error) {
	rows, err := s.Pool.Query(ctx, `SELECT key, lang, text FROM ui_texts ORDER BY key, lang`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UIText
	for rows.Next() {
		var t models.UIText
		if err := rows.Scan(&t.Key, &t.Lang, &t.Text); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
