package agent

import (
	"fmt"
	"strings"
)

// Status is the agent's position in the task lifecycle.
type Status string

const (
	// StatusIdle means the agent has not yet run a task.
	StatusIdle Status = "idle"

	// StatusActive means the last task completed successfully and the agent
	// is ready for more work.
	StatusActive Status = "active"

	// StatusBusy means a task is in progress.
	StatusBusy Status = "busy"

	// StatusError means the last task failed. A new task may still start.
	StatusError Status = "error"
)

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusActive, StatusBusy, StatusError:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, case-insensitively.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid status: %s", v)
	}
	return s, nil
}

// AllStatuses returns all valid statuses.
func AllStatuses() []Status {
	return []Status{StatusIdle, StatusActive, StatusBusy, StatusError}
}
