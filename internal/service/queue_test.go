package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deskline/backend/internal/db"
	"github.com/deskline/backend/internal/models"
	"github.com/deskline/backend/internal/notify"
)

func newTestQueue(t *testing.T) (*Queue, *db.Store) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := db.New(ctx, url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := store.Pool.Exec(ctx, `TRUNCATE tickets, operator_logs, feature_flags`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "desks.json")
	table := `{"desks": {"default": [1, 2], "design": [5], "foreign": [3], "master": [6], "army": [7]}}`
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatalf("write routing config: %v", err)
	}

	q := &Queue{
		Store:             store,
		Flags:             &db.Flags{Store: store, Logger: zerolog.Nop()},
		Notifier:          &notify.MockAdapter{},
		Logger:            zerolog.Nop(),
		RoutingConfigPath: path,
	}
	return q, store
}

func TestAllocateUnknownService(t *testing.T) {
	q := &Queue{}
	_, err := q.Allocate(context.Background(), AllocateRequest{Service: "walkin", FIO: "A", Phone: "1"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAllocateScenario(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	ticket, err := q.Allocate(ctx, AllocateRequest{
		Service:  "consultation",
		Category: "master",
		FIO:      "Иванов Иван",
		Phone:    "+77001234567",
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if ticket.Number != "C-101" {
		t.Fatalf("expected first number C-101, got %s", ticket.Number)
	}
	if ticket.Desk == nil || *ticket.Desk != 6 {
		t.Fatalf("expected master desk 6, got %v", ticket.Desk)
	}
	if ticket.Status != models.StatusPending {
		t.Fatalf("expected PENDING, got %s", ticket.Status)
	}

	second, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "B", Phone: "2"})
	if err != nil {
		t.Fatalf("allocate second: %v", err)
	}
	if second.Number != "C-102" {
		t.Fatalf("expected C-102, got %s", second.Number)
	}
}

func TestAllocateOnlineHasNoDesk(t *testing.T) {
	q, _ := newTestQueue(t)

	ticket, err := q.Allocate(context.Background(), AllocateRequest{Service: "online", FIO: "A", Phone: "1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if ticket.Desk != nil {
		t.Fatalf("expected nil desk for online ticket, got %d", *ticket.Desk)
	}
	if !ticket.IsOnline {
		t.Fatal("expected is_online to be set")
	}
	if ticket.Number != "O-101" {
		t.Fatalf("expected O-101, got %s", ticket.Number)
	}
}

func TestAllocateConcurrentUniqueNumbers(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	const n = 20
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := q.Allocate(ctx, AllocateRequest{Service: "admission", Category: "after11", FIO: "X", Phone: "0"})
			if err != nil {
				t.Errorf("allocate: %v", err)
				return
			}
			numbers <- ticket.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		if seen[num] {
			t.Fatalf("duplicate number issued: %s", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct numbers, got %d", n, len(seen))
	}
}

func TestCallNextDeskExclusivity(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "A", Phone: "1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "B", Phone: "2"}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	desk := *first.Desk

	called, err := q.CallNext(ctx, desk, "operator1")
	if err != nil {
		t.Fatalf("call next: %v", err)
	}
	if called.Number != first.Number || called.Status != models.StatusAccepted {
		t.Fatalf("expected oldest ticket %s ACCEPTED, got %s %s", first.Number, called.Number, called.Status)
	}

	if _, err := q.CallNext(ctx, desk, "operator1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while a ticket is ACCEPTED, got %v", err)
	}

	if _, _, err := q.SetStatus(ctx, called.ID, desk, models.StatusDone, "operator1"); err != nil {
		t.Fatalf("set done: %v", err)
	}

	next, err := q.CallNext(ctx, desk, "operator1")
	if err != nil {
		t.Fatalf("call next after done: %v", err)
	}
	if next.Number == called.Number {
		t.Fatalf("expected a different ticket, got %s again", next.Number)
	}
}

func TestCallNextConcurrentSingleWinner(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	ticket, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "A", Phone: "1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "B", Phone: "2"}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	desk := *ticket.Desk

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.CallNext(ctx, desk, "operator1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}

	current, err := q.Store.AcceptedForDesk(ctx, desk)
	if err != nil {
		t.Fatalf("accepted lookup: %v", err)
	}
	if current == nil {
		t.Fatal("expected one ACCEPTED ticket at desk")
	}
}

func TestCallNextEmptyQueue(t *testing.T) {
	q, _ := newTestQueue(t)
	if _, err := q.CallNext(context.Background(), 1, "operator1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty queue, got %v", err)
	}
}

func TestSetStatusTerminalStatesAreClosed(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	ticket, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "A", Phone: "1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	desk := *ticket.Desk

	if _, _, err := q.SetStatus(ctx, ticket.ID, desk, models.StatusCancelled, "operator1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	for _, status := range []string{models.StatusPending, models.StatusAccepted, models.StatusDone} {
		if _, _, err := q.SetStatus(ctx, ticket.ID, desk, status, "operator1"); !errors.Is(err, ErrConflict) {
			t.Fatalf("CANCELLED -> %s: expected ErrConflict, got %v", status, err)
		}
	}
}

func TestSetStatusValidation(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	if _, _, err := q.SetStatus(ctx, "00000000-0000-0000-0000-000000000000", 1, "ARCHIVED", "operator1"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
	if _, _, err := q.SetStatus(ctx, "00000000-0000-0000-0000-000000000000", 1, models.StatusDone, "operator1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing ticket, got %v", err)
	}
}

func TestSetStatusAcceptedExclusiveButSelfIdempotent(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "A", Phone: "1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	second, err := q.Allocate(ctx, AllocateRequest{Service: "consultation", FIO: "B", Phone: "2"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	desk := *first.Desk

	if _, _, err := q.SetStatus(ctx, first.ID, desk, models.StatusAccepted, "operator1"); err != nil {
		t.Fatalf("accept first: %v", err)
	}
	// Re-accepting the same ticket is allowed.
	if _, _, err := q.SetStatus(ctx, first.ID, desk, models.StatusAccepted, "operator1"); err != nil {
		t.Fatalf("self re-accept: %v", err)
	}
	if _, _, err := q.SetStatus(ctx, second.ID, desk, models.StatusAccepted, "operator1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict accepting a second ticket, got %v", err)
	}
}

func TestDisabledFlagsForbidActions(t *testing.T) {
	q, store := newTestQueue(t)
	ctx := context.Background()

	if err := store.SetFlag(ctx, FlagCallNext, false); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := store.SetFlag(ctx, FlagSetStatus, false); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if _, err := q.CallNext(ctx, 1, "operator1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := q.SetStatus(ctx, "id", 1, models.StatusDone, "operator1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
