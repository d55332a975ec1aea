package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-gamesync/pkg/interfaces/queue"
)

// Queue is an in-process FIFO queue.
type Queue struct {
	mu       sync.Mutex
	messages []queue.Message
}

var (
	_ queue.Queue    = (*Queue)(nil)
	_ queue.Receiver = (*Queue)(nil)
)

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(_ context.Context, msg queue.Message) error {
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now().UTC()
	}
	q.mu.Lock()
	q.messages = append(q.messages, msg)
	q.mu.Unlock()
	return nil
}

func (q *Queue) Receive(_ context.Context) (queue.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return queue.Message{}, queue.ErrEmpty
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, nil
}

// Len reports pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
