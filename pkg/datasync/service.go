package datasync

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/clients/queue"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
)

// RecordStore is the player record the data is mirrored from.
type RecordStore interface {
	UpdateUserData(ctx context.Context, data map[string]string) (int, error)
}

// Publisher enqueues player data operations for the worker.
type Publisher interface {
	EnqueuePlayerDataOperation(ctx context.Context, op queue.Operation, playerID string, data map[string]any) bool
}

// Service writes player data to the record store and queues the matching
// document store change.
type Service struct {
	records   RecordStore
	publisher Publisher
	logger    logger.Logger
	hooks     activity.Hooks
}

type Option func(*Service)

func WithLogger(lgr logger.Logger) Option {
	return func(s *Service) { s.logger = logger.OrNop(lgr) }
}

func WithActivity(hooks ...activity.Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

func NewService(records RecordStore, publisher Publisher, opts ...Option) *Service {
	s := &Service{records: records, publisher: publisher, logger: &logger.Nop{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SyncPlayerData stores data on the player record and enqueues an update.
func (s *Service) SyncPlayerData(ctx context.Context, playerID string, data map[string]any) bool {
	values, err := Stringify(data)
	if err != nil {
		s.logger.Error("player data not serializable", logger.F("player_id", playerID), logger.Err(err))
		return false
	}
	version, err := s.records.UpdateUserData(ctx, values)
	if err != nil || version == 0 {
		s.logger.Warn("player record update failed", logger.F("player_id", playerID), logger.Err(err))
		return false
	}
	if !s.publisher.EnqueuePlayerDataOperation(ctx, queue.OpUpdate, playerID, data) {
		return false
	}
	s.notify(ctx, activity.VerbDataSynced, playerID, map[string]any{"keys": len(data), "version": version})
	return true
}

// DeletePlayerData enqueues removal of the player's document.
func (s *Service) DeletePlayerData(ctx context.Context, playerID string) bool {
	if !s.publisher.EnqueuePlayerDataOperation(ctx, queue.OpDelete, playerID, nil) {
		return false
	}
	s.notify(ctx, activity.VerbDataDeleted, playerID, nil)
	return true
}

// Stringify converts values for the record store: strings are kept,
// everything else is JSON encoded.
func Stringify(data map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for key, value := range data {
		if str, ok := value.(string); ok {
			out[key] = str
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[key] = string(raw)
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, verb, playerID string, meta map[string]any) {
	s.hooks.Notify(ctx, activity.Event{
		Verb:       verb,
		ActorID:    playerID,
		UserID:     playerID,
		ObjectType: "player_document",
		ObjectID:   playerID,
		Metadata:   meta,
	})
}
