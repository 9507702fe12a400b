package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deskline/backend/internal/models"
)

func (s *Store) InsertOperatorLog(ctx context.Context, entry models.OperatorLog) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO operator_logs (operator, desk, action, ticket_number, meta)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.Operator, entry.Desk, entry.Action, entry.TicketNumber, b)
	return err
}

// ListOperatorLogs returns log entries newest first, optionally filtered by
// operator and desk, capped at limit.
func (s *Store) ListOperatorLogs(ctx context.Context, operator string, desk *int, limit int) ([]models.OperatorLog, error) {
	if limit <= 0 {
		limit = 5000
	}

	query := `SELECT id, operator, desk, action, ticket_number, meta, created_at FROM operator_logs`
	var args []any
	var wheres []string
	if operator != "" {
		args = append(args, operator)
		wheres = append(wheres, fmt.Sprintf("operator = $%d", len(args)))
	}
	if desk != nil {
		args = append(args, *desk)
		wheres = append(wheres, fmt.Sprintf("desk = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1)
	args = append(args, limit)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OperatorLog
	for rows.Next() {
		var entry models.OperatorLog
		var meta []byte
		if err := rows.Scan(&entry.ID, &entry.Operator, &entry.Desk, &entry.Action, &entry.TicketNumber, &meta, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &entry.Meta)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
