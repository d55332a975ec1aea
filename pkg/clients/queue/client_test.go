package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-gamesync/internal/storage/memory"
	queueiface "github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

type failingQueue struct{ calls int }

func (f *failingQueue) Enqueue(context.Context, queueiface.Message) error {
	f.calls++
	return errors.New("broker down")
}

func TestEnqueueEncodesPlayerOperation(t *testing.T) {
	backing := memory.NewQueue()
	var gotConn string
	client := New(Config{Credential: secrets.Credential{Literal: "amqp://local"}}, nil,
		func(_ context.Context, cfg Config, conn string) (queueiface.Queue, error) {
			gotConn = conn
			if cfg.QueueName != DefaultQueueName {
				t.Fatalf("expected default queue name, got %q", cfg.QueueName)
			}
			return backing, nil
		})
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return stamp }
	ctx := context.Background()

	if !client.EnqueuePlayerDataOperation(ctx, OpUpdate, "p1", map[string]any{"score": 5}) {
		t.Fatalf("expected enqueue to succeed")
	}
	if gotConn != "amqp://local" {
		t.Fatalf("unexpected connection %q", gotConn)
	}
	msg, err := backing.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var op PlayerDataOperation
	if err := Decode(msg.Body, &op); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if op.Operation != OpUpdate || op.PlayerID != "p1" || !op.Timestamp.Equal(stamp) {
		t.Fatalf("unexpected operation %+v", op)
	}
	if op.Data["score"] != float64(5) {
		t.Fatalf("unexpected data %v", op.Data)
	}
}

func TestEnqueueFailuresAreBenign(t *testing.T) {
	ctx := context.Background()

	uninitialized := New(Config{}, nil, func(context.Context, Config, string) (queueiface.Queue, error) {
		t.Fatalf("opener must not run without a credential")
		return nil, nil
	})
	if uninitialized.Enqueue(ctx, map[string]string{"a": "b"}) {
		t.Fatalf("expected false without credential")
	}

	broken := &failingQueue{}
	client := New(Config{Credential: secrets.Credential{Literal: "conn"}}, nil,
		func(context.Context, Config, string) (queueiface.Queue, error) { return broken, nil })
	if client.Enqueue(ctx, "hello") {
		t.Fatalf("expected false on transport failure")
	}
	if broken.calls != 1 {
		t.Fatalf("expected one send attempt, got %d", broken.calls)
	}
	if client.Enqueue(ctx, make(chan int)) {
		t.Fatalf("expected false for unencodable message")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	var op PlayerDataOperation
	if err := Decode("%%%", &op); err == nil {
		t.Fatalf("expected base64 error")
	}
	body, _ := Encode("not an object")
	if err := Decode(body, &op); err == nil {
		t.Fatalf("expected json error")
	}
	if !OpCreate.Valid() || Operation("merge").Valid() {
		t.Fatalf("unexpected operation validity")
	}
}
