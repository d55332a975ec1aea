package broadcaster

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
)

func TestFanoutDeliversToEveryObserver(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	f := NewFanout(first, nil, second)
	if err := f.Broadcast(context.Background(), Event{Topic: TopicGameState, Payload: "ready"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(first.Events(TopicGameState)) != 1 || len(second.Events(TopicGameState)) != 1 {
		t.Fatalf("expected both observers to receive the event")
	}
}

func TestFanoutKeepsDeliveringAfterFailure(t *testing.T) {
	errUI := errors.New("ui gone")
	errSocket := errors.New("socket closed")
	rec := &Recorder{}
	f := NewFanout(
		Func(func(context.Context, Event) error { return errUI }),
		rec,
		Func(func(context.Context, Event) error { return errSocket }),
	)
	err := f.Broadcast(context.Background(), Event{Topic: TopicAuthState})
	if !errors.Is(err, errUI) || !errors.Is(err, errSocket) {
		t.Fatalf("expected joined errors, got %v", err)
	}
	if len(rec.Events("")) != 1 {
		t.Fatalf("expected delivery past the failing observer")
	}
}

func TestLoggingWritesStateWithoutHiddenFields(t *testing.T) {
	var buf bytes.Buffer
	b := NewLogging(logger.NewWithWriter(&buf, logger.LevelDebug))
	payload := struct {
		Status string `json:"status"`
		Token  string `json:"-"`
	}{Status: "authenticated", Token: "tok-123"}
	if err := b.Broadcast(context.Background(), Event{Topic: TopicAuthState, Payload: payload}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "topic=auth.state") || !strings.Contains(out, "authenticated") {
		t.Fatalf("unexpected log line %q", out)
	}
	if strings.Contains(out, "tok-123") {
		t.Fatalf("token leaked into log %q", out)
	}
}
