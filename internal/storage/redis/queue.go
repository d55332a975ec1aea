package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	redis "github.com/redis/go-redis/v9"
)

// Queue is a FIFO list queue.
type Queue struct {
	rdb Client
	key string
	now func() time.Time
}

var (
	_ queue.Queue    = (*Queue)(nil)
	_ queue.Receiver = (*Queue)(nil)
)

// NewQueue builds a queue stored under the list key "<prefix>queue:<name>".
func NewQueue(rdb Client, prefix, name string) *Queue {
	if prefix == "" {
		prefix = "gamesync:"
	}
	return &Queue{rdb: rdb, key: prefix + "queue:" + name, now: time.Now}
}

type envelope struct {
	Body       string    `json:"body"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func (q *Queue) Enqueue(ctx context.Context, msg queue.Message) error {
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = q.now().UTC()
	}
	data, err := json.Marshal(envelope{Body: msg.Body, EnqueuedAt: msg.EnqueuedAt})
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, q.key, data).Err()
}

func (q *Queue) Receive(ctx context.Context) (queue.Message, error) {
	raw, err := q.rdb.LPop(ctx, q.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return queue.Message{}, queue.ErrEmpty
		}
		return queue.Message{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return queue.Message{}, err
	}
	return queue.Message{Body: env.Body, EnqueuedAt: env.EnqueuedAt}, nil
}
