package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/backend/internal/utils"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LockPrefix serializes number generation for one prefix. The advisory lock
// is transaction-scoped and released on commit/rollback.
func (s *Store) LockPrefix(ctx context.Context, tx pgx.Tx, prefix string) error {
	return advisoryLock(ctx, tx, "ticket_prefix:"+prefix)
}

// LockDesk serializes call-next and accept transitions for one desk.
// Different desks map to different lock keys and do not block each other.
func (s *Store) LockDesk(ctx context.Context, tx pgx.Tx, desk int) error {
	return advisoryLock(ctx, tx, "desk:"+strconv.Itoa(desk))
}

func advisoryLock(ctx context.Context, tx pgx.Tx, key string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(utils.HashStringToUint64(key)))
	return err
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key error,
// used to detect number-generation races on the tickets.number constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsLockTimeout reports whether err is a lock acquisition timeout
// (lock_not_available or a statement timeout while waiting).
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "55P03" || pgErr.Code == "57014")
}
