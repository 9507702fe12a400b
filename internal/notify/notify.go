package notify

import (
	"context"

	"github.com/deskline/backend/internal/models"
)

// Adapter pushes a "your ticket is called" message to a visitor. Delivery is
// best effort; the queue never waits on it.
type Adapter interface {
	TicketCalled(ctx context.Context, t models.Ticket) error
}
