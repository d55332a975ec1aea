package broadcaster

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
)

// Func adapts a function to the Broadcaster interface.
type Func func(ctx context.Context, event Event) error

func (f Func) Broadcast(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Fanout delivers each state change to every observer. A failing observer
// does not stop delivery to the others.
type Fanout struct {
	targets []Broadcaster
}

var _ Broadcaster = (*Fanout)(nil)

func NewFanout(targets ...Broadcaster) *Fanout {
	filtered := make([]Broadcaster, 0, len(targets))
	for _, target := range targets {
		if target != nil {
			filtered = append(filtered, target)
		}
	}
	return &Fanout{targets: filtered}
}

// Broadcast returns the joined observer errors.
func (f *Fanout) Broadcast(ctx context.Context, event Event) error {
	var errs []error
	for _, target := range f.targets {
		if err := target.Broadcast(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logging writes auth and game state transitions to a logger at debug level.
// Payloads are logged in their JSON form so fields hidden from JSON, such as
// session tokens, stay out of the log.
type Logging struct {
	logger logger.Logger
}

var _ Broadcaster = (*Logging)(nil)

func NewLogging(lgr logger.Logger) *Logging {
	return &Logging{logger: logger.OrNop(lgr)}
}

func (l *Logging) Broadcast(_ context.Context, event Event) error {
	state, err := json.Marshal(event.Payload)
	if err != nil {
		l.logger.Debug("state changed", logger.F("topic", event.Topic))
		return nil
	}
	l.logger.Debug("state changed", logger.F("topic", event.Topic), logger.F("state", string(state)))
	return nil
}
