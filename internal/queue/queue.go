// Package queue is the task-queue boundary of the service. The API
// side only ever enqueues; the worker drains. Nothing here observes
// task completion — retry policy belongs to whatever runs the tasks.
package queue

import (
	"context"
	"encoding/json"
	"time"
)

// Queue is what the dispatch workflow depends on. Implementations are
// expected to be best-effort: a failed Enqueue is the caller's problem
// to log and skip, not to retry.
type Queue interface {
	Enqueue(ctx context.Context, task string, payload any) error
}

// Task is the wire envelope stored on the queue.
type Task struct {
	Task       string          `json:"task"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

func (t *Task) DecodePayload(v any) error {
	return json.Unmarshal(t.Payload, v)
}
