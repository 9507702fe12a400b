package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/deskline/backend/internal/models"
)

// GetOperatorProfile returns the desk assignment for an operator, or nil when
// the operator has none.
func (s *Store) GetOperatorProfile(ctx context.Context, operator string) (*models.OperatorProfile, error) {
	var p models.OperatorProfile
	err := s.Pool.QueryRow(ctx, `SELECT operator, desk FROM operator_profiles WHERE operator = $1`, operator).
		Scan(&p.Operator, &p.Desk)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertOperatorProfile(ctx context.Context, operator string, desk int) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO operator_profiles (operator, desk)
		VALUES ($1, $2)
		ON CONFLICT (operator) DO UPDATE SET desk = EXCLUDED.desk
	`, operator, desk)
	return err
}
