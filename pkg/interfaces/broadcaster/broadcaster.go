package broadcaster

import (
	"context"
	"sync"
)

// Well-known topics.
const (
	TopicGameState = "game.state"
	TopicAuthState = "auth.state"
)

// Event carries a state-change payload for UI observers.
type Event struct {
	Topic   string
	Payload any
}

// Broadcaster pushes state changes to whatever is rendering them.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop broadcaster discards events.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (n *Nop) Broadcast(ctx context.Context, event Event) error { return nil }

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Broadcaster = (*Recorder)(nil)

func (r *Recorder) Broadcast(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events, optionally filtered by topic.
func (r *Recorder) Events(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, len(r.events))
	for _, evt := range r.events {
		if topic == "" || evt.Topic == topic {
			out = append(out, evt)
		}
	}
	return out
}
