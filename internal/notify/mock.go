package notify

import (
	"context"
	"sync"

	"github.com/deskline/backend/internal/models"
)

// MockAdapter records notified ticket numbers instead of delivering them.
type MockAdapter struct {
	mu   sync.Mutex
	sent []string
}

func (m *MockAdapter) TicketCalled(ctx context.Context, t models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, t.Number)
	return nil
}

func (m *MockAdapter) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}
