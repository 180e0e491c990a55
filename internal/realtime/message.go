// Package realtime carries job lifecycle notifications to out-of-process listeners.
package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Message is one job event as published on the bus.
type Message struct {
	Event  string         `json:"event"`
	JobID  uuid.UUID      `json:"jobId"`
	Status string         `json:"status,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	At     time.Time      `json:"at"`
}
