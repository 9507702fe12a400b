package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/deskline/backend/internal/models"
)

const ticketColumns = `id, number, service, category, pay_type, profile, track, desk,
	fio, phone, social_category, is_online, meeting_type, whatsapp, status, created_at`

type ticketRow interface {
	Scan(dest ...any) error
}

func scanTicket(row ticketRow) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.Number, &t.Service, &t.Category, &t.PayType, &t.Profile, &t.Track, &t.Desk,
		&t.FIO, &t.Phone, &t.SocialCategory, &t.IsOnline, &t.MeetingType, &t.Whatsapp, &t.Status, &t.CreatedAt,
	)
	return t, err
}

func (s *Store) InsertTicket(ctx context.Context, tx pgx.Tx, t *models.Ticket) error {
	return tx.QueryRow(ctx, `
		INSERT INTO tickets (id, number, service, category, pay_type, profile, track, desk,
			fio, phone, social_category, is_online, meeting_type, whatsapp, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at
	`, t.ID, t.Number, t.Service, t.Category, t.PayType, t.Profile, t.Track, t.Desk,
		t.FIO, t.Phone, t.SocialCategory, t.IsOnline, t.MeetingType, t.Whatsapp, t.Status,
	).Scan(&t.CreatedAt)
}

// LastNumberForPrefix returns the number of the most recently created ticket
// for the prefix, or "" when the prefix has no tickets yet. Callers must hold
// the prefix lock, otherwise two allocations can read the same last number.
func (s *Store) LastNumberForPrefix(ctx context.Context, tx pgx.Tx, prefix string) (string, error) {
	var number string
	err := tx.QueryRow(ctx, `
		SELECT number FROM tickets
		WHERE number LIKE $1
		ORDER BY created_at DESC
		LIMIT 1
	`, prefix+"-%").Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

// AcceptedForDeskTx reads the ACCEPTED ticket at a desk with a row lock,
// optionally excluding one ticket id (for idempotent self-accepts).
func (s *Store) AcceptedForDeskTx(ctx context.Context, tx pgx.Tx, desk int, excludeID string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE desk = $1 AND status = $2`
	args := []any{desk, models.StatusAccepted}
	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	query += " ORDER BY created_at ASC LIMIT 1 FOR UPDATE"

	t, err := scanTicket(tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// OldestPendingForDeskTx locks and returns the oldest PENDING ticket at a
// desk, or nil when the queue is empty.
func (s *Store) OldestPendingForDeskTx(ctx context.Context, tx pgx.Tx, desk int) (*models.Ticket, error) {
	t, err := scanTicket(tx.QueryRow(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE desk = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE
	`, desk, models.StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TicketForDeskTx locks and returns the ticket with the given id at the given
// desk, or nil when it does not exist there.
func (s *Store) TicketForDeskTx(ctx context.Context, tx pgx.Tx, ticketID string, desk int) (*models.Ticket, error) {
	t, err := scanTicket(tx.QueryRow(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE id = $1 AND desk = $2
		FOR UPDATE
	`, ticketID, desk))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) UpdateTicketStatus(ctx context.Context, tx pgx.Tx, ticketID, status string) error {
	_, err := tx.Exec(ctx, `UPDATE tickets SET status = $1 WHERE id = $2`, status, ticketID)
	return err
}

func (s *Store) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	return scanTicket(s.Pool.QueryRow(ctx, `
		SELECT `+ticketColumns+` FROM tickets WHERE id = $1
	`, ticketID))
}

// ListTickets is a snapshot read for display; no locks, slightly stale data
// is acceptable.
func (s *Store) ListTickets(ctx context.Context, status, service string, desk *int, limit, offset int) ([]models.Ticket, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	var args []any
	var wheres []string
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if service != "" {
		args = append(args, service)
		wheres = append(wheres, fmt.Sprintf("service = $%d", len(args)))
	}
	if desk != nil {
		args = append(args, *desk)
		wheres = append(wheres, fmt.Sprintf("desk = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	return s.queryTickets(ctx, query, args...)
}

// PendingForDesk returns the waiting queue for a desk in call order.
func (s *Store) PendingForDesk(ctx context.Context, desk int) ([]models.Ticket, error) {
	return s.queryTickets(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE desk = $1 AND status = $2
		ORDER BY created_at ASC
	`, desk, models.StatusPending)
}

// AcceptedForDesk is the unlocked snapshot variant used for display.
func (s *Store) AcceptedForDesk(ctx context.Context, desk int) (*models.Ticket, error) {
	t, err := scanTicket(s.Pool.QueryRow(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE desk = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, desk, models.StatusAccepted))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Board returns the latest ACCEPTED ticket per desk for the public display.
func (s *Store) Board(ctx context.Context) (map[string]models.Ticket, error) {
	tickets, err := s.queryTickets(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE status = $1 AND desk IS NOT NULL
		ORDER BY created_at DESC
	`, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	out := map[string]models.Ticket{}
	for _, t := range tickets {
		key := fmt.Sprint(*t.Desk)
		if _, ok := out[key]; !ok {
			out[key] = t
		}
	}
	return out, nil
}

func (s *Store) queryTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
