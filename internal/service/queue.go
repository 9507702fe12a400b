package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deskline/backend/internal/db"
	"github.com/deskline/backend/internal/models"
	"github.com/deskline/backend/internal/notify"
	"github.com/deskline/backend/internal/routing"
)

// Feature-flag keys consulted by the queue engine. Missing flags default to
// enabled.
const (
	FlagCallNext     = "operator.call_next"
	FlagSetStatus    = "operator.set_status"
	FlagDownloadLogs = "operator.download_logs"
	FlagAutorefresh  = "operator.autorefresh"
)

// FlagSource is a total lookup: it returns the default on a missing key and
// never fails.
type FlagSource interface {
	IsEnabled(ctx context.Context, key string, def bool) bool
}

// Queue is the ticket issuance and desk-routing engine. All state transitions
// go through it; correctness under concurrent operators rests on the store's
// per-prefix and per-desk transaction locks, not on in-process mutexes, so
// multiple server instances can run against one database.
type Queue struct {
	Store              *db.Store
	Flags              FlagSource
	Notifier           notify.Adapter
	Logger             zerolog.Logger
	RoutingConfigPath  string
	AllocateMaxRetries int
}

type AllocateRequest struct {
	Service        string `json:"service" validate:"required"`
	Category       string `json:"category"`
	PayType        string `json:"pay_type"`
	Profile        string `json:"profile"`
	Track          string `json:"track"`
	FIO            string `json:"fio" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	SocialCategory string `json:"social_category"`
	MeetingType    string `json:"meeting_type"`
	Whatsapp       string `json:"whatsapp"`
}

// Allocate validates the intake request, routes it to a desk, issues the next
// display number for the service prefix and inserts the ticket as PENDING.
// Number generation and insert run under a per-prefix advisory lock; a
// duplicate number slipping through (e.g. a concurrent allocation on another
// instance that beat the lock acquisition ordering) trips the unique
// constraint and is retried a few times before giving up with ErrConflict.
func (q *Queue) Allocate(ctx context.Context, req AllocateRequest) (models.Ticket, error) {
	if !models.KnownService(req.Service) {
		return models.Ticket{}, fmt.Errorf("unknown service %q: %w", req.Service, ErrInvalidArgument)
	}

	table, err := routing.Load(q.RoutingConfigPath)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("load routing table: %w", err)
	}

	prefix := PrefixForService(req.Service)
	desk := routing.Route(req.Service, req.Category, req.Track, req.Profile, table)

	retries := q.AllocateMaxRetries
	if retries <= 0 {
		retries = 3
	}

	for attempt := 0; attempt < retries; attempt++ {
		ticket := models.Ticket{
			ID:             uuid.NewString(),
			Service:        req.Service,
			Category:       req.Category,
			PayType:        req.PayType,
			Profile:        req.Profile,
			Track:          req.Track,
			Desk:           desk,
			FIO:            req.FIO,
			Phone:          req.Phone,
			SocialCategory: req.SocialCategory,
			IsOnline:       req.Service == models.ServiceOnline,
			MeetingType:    req.MeetingType,
			Whatsapp:       req.Whatsapp,
			Status:         models.StatusPending,
		}

		err := q.Store.WithTx(ctx, func(tx pgx.Tx) error {
			if err := q.Store.LockPrefix(ctx, tx, prefix); err != nil {
				return err
			}
			last, err := q.Store.LastNumberForPrefix(ctx, tx, prefix)
			if err != nil {
				return err
			}
			ticket.Number = NextNumber(prefix, last)
			return q.Store.InsertTicket(ctx, tx, &ticket)
		})
		if err == nil {
			return ticket, nil
		}
		if db.IsUniqueViolation(err) {
			q.Logger.Warn().Str("number", ticket.Number).Int("attempt", attempt+1).Msg("duplicate ticket number, retrying")
			continue
		}
		if db.IsLockTimeout(err) {
			return models.Ticket{}, fmt.Errorf("allocation lock timed out: %w", ErrTransient)
		}
		return models.Ticket{}, err
	}
	return models.Ticket{}, fmt.Errorf("could not issue a unique number for prefix %s: %w", prefix, ErrConflict)
}

// CallNext promotes the oldest PENDING ticket at the desk to ACCEPTED. The
// whole read-check-write runs under the desk lock, so of two concurrent calls
// for one desk exactly one wins; the loser observes the fresh ACCEPTED ticket
// and gets ErrConflict, or ErrNotFound when the queue was emptied.
func (q *Queue) CallNext(ctx context.Context, desk int, actor string) (models.Ticket, error) {
	if !q.Flags.IsEnabled(ctx, FlagCallNext, true) {
		return models.Ticket{}, fmt.Errorf("call-next disabled: %w", ErrForbidden)
	}

	var called models.Ticket
	err := q.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := q.Store.LockDesk(ctx, tx, desk); err != nil {
			return err
		}
		current, err := q.Store.AcceptedForDeskTx(ctx, tx, desk, "")
		if err != nil {
			return err
		}
		if current != nil {
			return fmt.Errorf("desk %d already serves %s: %w", desk, current.Number, ErrConflict)
		}
		next, err := q.Store.OldestPendingForDeskTx(ctx, tx, desk)
		if err != nil {
			return err
		}
		if next == nil {
			return fmt.Errorf("no pending tickets at desk %d: %w", desk, ErrNotFound)
		}
		if err := q.Store.UpdateTicketStatus(ctx, tx, next.ID, models.StatusAccepted); err != nil {
			return err
		}
		called = *next
		called.Status = models.StatusAccepted
		return nil
	})
	if err != nil {
		if db.IsLockTimeout(err) {
			return models.Ticket{}, fmt.Errorf("desk lock timed out: %w", ErrTransient)
		}
		return models.Ticket{}, err
	}

	q.audit(ctx, actor, desk, "CALL_NEXT", &called, map[string]any{"to": models.StatusAccepted})
	q.notifyCalled(called)
	return called, nil
}

// SetStatus applies an explicit transition to a ticket at the operator's
// desk. DONE and CANCELLED are terminal: any attempt to move a ticket out of
// them fails with ErrConflict. Accepting is exclusive per desk; re-accepting
// the already-ACCEPTED ticket is an idempotent success.
func (q *Queue) SetStatus(ctx context.Context, ticketID string, desk int, newStatus, actor string) (models.Ticket, string, error) {
	if !q.Flags.IsEnabled(ctx, FlagSetStatus, true) {
		return models.Ticket{}, "", fmt.Errorf("set-status disabled: %w", ErrForbidden)
	}
	if !models.KnownStatus(newStatus) {
		return models.Ticket{}, "", fmt.Errorf("unknown status %q: %w", newStatus, ErrInvalidArgument)
	}
	if _, err := uuid.Parse(ticketID); err != nil {
		return models.Ticket{}, "", fmt.Errorf("no ticket %q at desk %d: %w", ticketID, desk, ErrNotFound)
	}

	var updated models.Ticket
	var old string
	err := q.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := q.Store.LockDesk(ctx, tx, desk); err != nil {
			return err
		}
		t, err := q.Store.TicketForDeskTx(ctx, tx, ticketID, desk)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("ticket %s not found at desk %d: %w", ticketID, desk, ErrNotFound)
		}
		if models.TerminalStatus(t.Status) {
			return fmt.Errorf("ticket %s is already %s: %w", t.Number, t.Status, ErrConflict)
		}
		if newStatus == models.StatusAccepted {
			other, err := q.Store.AcceptedForDeskTx(ctx, tx, desk, t.ID)
			if err != nil {
				return err
			}
			if other != nil {
				return fmt.Errorf("desk %d already serves %s: %w", desk, other.Number, ErrConflict)
			}
		}
		old = t.Status
		if err := q.Store.UpdateTicketStatus(ctx, tx, t.ID, newStatus); err != nil {
			return err
		}
		updated = *t
		updated.Status = newStatus
		return nil
	})
	if err != nil {
		if db.IsLockTimeout(err) {
			return models.Ticket{}, "", fmt.Errorf("desk lock timed out: %w", ErrTransient)
		}
		return models.Ticket{}, "", err
	}

	q.audit(ctx, actor, desk, "SET_STATUS", &updated, map[string]any{"from": old, "to": newStatus})
	return updated, old, nil
}

// View is the operator's snapshot: the currently served ticket plus the
// waiting queue in call order. Reads are unlocked and may lag a transition by
// a moment.
type View struct {
	Current *models.Ticket
	Pending []models.Ticket
}

func (q *Queue) QueueView(ctx context.Context, desk int, actor, lang string) (View, error) {
	if !q.Flags.IsEnabled(ctx, FlagAutorefresh, true) {
		return View{}, fmt.Errorf("autorefresh disabled: %w", ErrForbidden)
	}

	current, err := q.Store.AcceptedForDesk(ctx, desk)
	if err != nil {
		return View{}, err
	}
	pending, err := q.Store.PendingForDesk(ctx, desk)
	if err != nil {
		return View{}, err
	}

	q.audit(ctx, actor, desk, "VIEW", nil, map[string]any{"lang": lang})
	return View{Current: current, Pending: pending}, nil
}

// audit records one entry per successful transition or view. Failures must
// not roll back or fail the operation that already happened, so they are only
// logged.
func (q *Queue) audit(ctx context.Context, actor string, desk int, action string, t *models.Ticket, meta map[string]any) {
	entry := models.OperatorLog{
		Operator: actor,
		Desk:     desk,
		Action:   action,
		Meta:     meta,
	}
	if t != nil {
		entry.TicketNumber = &t.Number
	}
	if err := q.Store.InsertOperatorLog(ctx, entry); err != nil {
		q.Logger.Error().Err(err).Str("action", action).Int("desk", desk).Msg("audit write failed")
	}
}

func (q *Queue) notifyCalled(t models.Ticket) {
	if q.Notifier == nil || t.Whatsapp == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := q.Notifier.TicketCalled(ctx, t); err != nil {
			q.Logger.Warn().Err(err).Str("number", t.Number).Msg("call notification failed")
		}
	}()
}
