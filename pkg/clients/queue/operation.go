package queue

import "time"

// Operation names a player data change carried on the queue.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpRead, OpUpdate, OpDelete:
		return true
	}
	return false
}

// PlayerDataOperation is the queue message consumed by the data worker.
type PlayerDataOperation struct {
	Operation Operation      `json:"operation"`
	PlayerID  string         `json:"playerId"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
