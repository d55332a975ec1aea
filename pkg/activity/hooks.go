package activity

import (
	"context"
	"time"
)

// Verbs emitted by the session, game and data flows.
const (
	VerbLogin          = "auth.login"
	VerbRegister       = "auth.register"
	VerbLogout         = "auth.logout"
	VerbGameEnded      = "game.ended"
	VerbProfileUpdated = "profile.updated"
	VerbAvatarChanged  = "profile.avatar_changed"
	VerbDataSynced     = "player_data.synced"
	VerbDataDeleted    = "player_data.deleted"
)

// Event captures the common fields consumers need to record activity/audit events.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Hook observers receive activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event)
}

// Hooks provides a convenient fan-out collection.
type Hooks []Hook

// Notify delivers the event to every hook, skipping nil entries.
func (h Hooks) Notify(ctx context.Context, evt Event) {
	if len(h) == 0 {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	for _, hook := range h {
		if hook == nil {
			continue
		}
		hook.Notify(ctx, evt)
	}
}

// Nop is a no-op hook useful for defaults.
type Nop struct{}

func (Nop) Notify(_ context.Context, _ Event) {}

// Recorder keeps events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Notify(_ context.Context, evt Event) {
	r.Events = append(r.Events, evt)
}

// Verbs lists the recorded verbs in order.
func (r *Recorder) Verbs() []string {
	out := make([]string, 0, len(r.Events))
	for _, evt := range r.Events {
		out = append(out, evt.Verb)
	}
	return out
}

// CloneMetadata makes a shallow copy so hooks can mutate without affecting callers.
func CloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
