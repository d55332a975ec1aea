package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
)

// Status is the synchronizer lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusSaving  Status = "saving"
)

// ErrSaveFailed is reported when the record store did not accept a save.
var ErrSaveFailed = errors.New("game: save failed")

// RecordStore reads and writes the player's record. The identity client
// satisfies it.
type RecordStore interface {
	GetUserData(ctx context.Context, keys ...string) (map[string]string, error)
	UpdateUserData(ctx context.Context, data map[string]string) (int, error)
}

// Snapshot is what observers see after every change.
type Snapshot struct {
	State     State  `json:"state"`
	Status    Status `json:"status"`
	SaveError string `json:"saveError,omitempty"`
}

// Synchronizer owns the local game state and persists it to the player record.
type Synchronizer struct {
	store       RecordStore
	autoSave    bool
	logger      logger.Logger
	broadcaster broadcaster.Broadcaster
	hooks       activity.Hooks
	playerID    func() string
	now         func() time.Time

	mu      sync.Mutex
	state   State
	status  Status
	saveErr error
}

type Option func(*Synchronizer)

// WithAutoSave makes Start, AddScore and LevelUp persist after mutating.
func WithAutoSave(enabled bool) Option {
	return func(s *Synchronizer) { s.autoSave = enabled }
}

func WithLogger(lgr logger.Logger) Option {
	return func(s *Synchronizer) { s.logger = logger.OrNop(lgr) }
}

func WithBroadcaster(b broadcaster.Broadcaster) Option {
	return func(s *Synchronizer) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

func WithActivity(hooks ...activity.Hook) Option {
	return func(s *Synchronizer) { s.hooks = append(s.hooks, hooks...) }
}

// WithPlayerID supplies the current player id for activity events.
func WithPlayerID(fn func() string) Option {
	return func(s *Synchronizer) {
		if fn != nil {
			s.playerID = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSynchronizer(store RecordStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:       store,
		logger:      &logger.Nop{},
		broadcaster: &broadcaster.Nop{},
		playerID:    func() string { return "" },
		now:         time.Now,
		state:       DefaultState(),
		status:      StatusIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load replaces the local state with the saved one merged over defaults.
// A missing or unreadable save yields defaults. Only an authentication
// failure is returned, after the state has been reset to defaults.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.setStatus(ctx, StatusLoading)

	state := DefaultState()
	data, err := s.store.GetUserData(ctx, RecordKey)
	switch {
	case err != nil:
		s.logger.Warn("game state load failed", logger.Err(err))
	case data[RecordKey] == "":
		s.logger.Debug("no saved game state, using defaults")
	default:
		decoded, decodeErr := Decode(data[RecordKey])
		if decodeErr != nil {
			s.logger.Warn("saved game state unreadable, using defaults", logger.Err(decodeErr))
		} else {
			state = decoded
		}
	}

	s.mu.Lock()
	s.state = state
	s.status = StatusReady
	s.mu.Unlock()
	s.publish(ctx)
	return err
}

// Save stamps LastSaved and persists the current state. A failure is kept in
// SaveError and never rolls back the local state.
func (s *Synchronizer) Save(ctx context.Context) error {
	s.mu.Lock()
	previous := s.status
	s.status = StatusSaving
	saved := s.now().UTC()
	s.state.LastSaved = &saved
	payload, err := s.state.Encode()
	s.mu.Unlock()
	s.publish(ctx)

	if err == nil {
		var version int
		version, err = s.store.UpdateUserData(ctx, map[string]string{RecordKey: payload})
		if err == nil && version == 0 {
			err = ErrSaveFailed
		}
	}
	if err != nil && !errors.Is(err, ErrSaveFailed) {
		err = fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.mu.Lock()
	s.saveErr = err
	if previous == StatusIdle {
		s.status = StatusIdle
	} else {
		s.status = StatusReady
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("game state save failed", logger.Err(err))
	}
	s.publish(ctx)
	return err
}

// Start resets progress to the defaults and begins play.
func (s *Synchronizer) Start(ctx context.Context) State {
	return s.mutate(ctx, s.autoSave, func(st *State) {
		*st = DefaultState()
		st.IsPlaying = true
	})
}

// End stops play and always saves once.
func (s *Synchronizer) End(ctx context.Context) State {
	state := s.mutate(ctx, true, func(st *State) {
		st.IsPlaying = false
	})
	player := s.playerID()
	s.hooks.Notify(ctx, activity.Event{
		Verb:       activity.VerbGameEnded,
		ActorID:    player,
		UserID:     player,
		ObjectType: "game_state",
		ObjectID:   player,
		Metadata: map[string]any{
			"score": state.Score,
			"level": state.Level,
			"saved": s.SaveError() == nil,
		},
	})
	return state
}

// AddScore adds points to the score. Negative values are accepted.
func (s *Synchronizer) AddScore(ctx context.Context, points int) State {
	return s.mutate(ctx, s.autoSave, func(st *State) {
		st.Score += points
	})
}

// LevelUp advances one level.
func (s *Synchronizer) LevelUp(ctx context.Context) State {
	return s.mutate(ctx, s.autoSave, func(st *State) {
		st.Level++
	})
}

// State returns a copy of the local state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SaveError reports the outcome of the most recent save.
func (s *Synchronizer) SaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) mutate(ctx context.Context, save bool, fn func(*State)) State {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.publish(ctx)
	if save {
		_ = s.Save(ctx)
	}
	return s.State()
}

func (s *Synchronizer) setStatus(ctx context.Context, status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.publish(ctx)
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state.clone(), Status: s.status}
	if s.saveErr != nil {
		snap.SaveError = s.saveErr.Error()
	}
	return snap
}

func (s *Synchronizer) publish(ctx context.Context) {
	snap := s.Snapshot()
	if err := s.broadcaster.Broadcast(ctx, broadcaster.Event{Topic: broadcaster.TopicGameState, Payload: snap}); err != nil {
		s.logger.Debug("game state broadcast failed", logger.Err(err))
	}
}
