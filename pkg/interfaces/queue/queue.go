package queue

import (
	"context"
	"errors"
	"time"
)

// ErrEmpty is returned by a Receiver when no message is pending.
var ErrEmpty = errors.New("queue: empty")

// Message is an already-encoded queue payload.
type Message struct {
	Body       string
	EnqueuedAt time.Time
}

// Queue accepts fire-and-forget messages.
type Queue interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Receiver pops pending messages for workers.
type Receiver interface {
	Receive(ctx context.Context) (Message, error)
}

// Nop queue swallows messages (used for tests or disabled dispatch).
type Nop struct{}

var _ Queue = (*Nop)(nil)

func (n *Nop) Enqueue(ctx context.Context, msg Message) error { return nil }
