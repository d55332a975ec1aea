package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKey is the player record key holding the serialized State.
const RecordKey = "GameState"

// State is the player's game progress. The local copy is authoritative.
type State struct {
	Score     int        `json:"score"`
	Level     int        `json:"level"`
	IsPlaying bool       `json:"isPlaying"`
	LastSaved *time.Time `json:"lastSaved,omitempty"`
}

// DefaultState is the state of a player with no saved progress.
func DefaultState() State {
	return State{Score: 0, Level: 1, IsPlaying: false}
}

// Decode merges the fields present in raw over the defaults.
func Decode(raw string) (State, error) {
	state := DefaultState()
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return DefaultState(), fmt.Errorf("game: decode state: %w", err)
	}
	return state, nil
}

// Encode serializes s for the player record.
func (s State) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("game: encode state: %w", err)
	}
	return string(data), nil
}

func (s State) clone() State {
	if s.LastSaved != nil {
		saved := *s.LastSaved
		s.LastSaved = &saved
	}
	return s
}
