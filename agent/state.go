package agent

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-ai/engine"
)

// Lifecycle defaults.
const (
	// DefaultTaskDuration is the estimated task duration used when
	// StartTask is given none.
	DefaultTaskDuration = 60 * time.Minute

	// DefaultCleanupFrequency is how often cleanup becomes due.
	DefaultCleanupFrequency = time.Hour
)

// Sentinel errors for lifecycle violations.
var (
	// ErrTaskInProgress indicates StartTask was called while a task is
	// already running.
	ErrTaskInProgress = errors.New("task already in progress")

	// ErrNoActiveTask indicates CompleteTask was called with no task
	// running.
	ErrNoActiveTask = errors.New("no active task")
)

// Task describes the work handed to StartTask.
type Task struct {
	TaskID      string `json:"task_id" yaml:"task_id"`
	IssueNumber int    `json:"issue_number,omitempty" yaml:"issue_number,omitempty"`
	Stream      string `json:"stream,omitempty" yaml:"stream,omitempty"`

	// EstimatedDuration defaults to DefaultTaskDuration when zero.
	EstimatedDuration time.Duration `json:"estimated_duration,omitempty" yaml:"estimated_duration,omitempty"`
}

// TaskRef is the currently running task as recorded on the state.
type TaskRef struct {
	TaskID              string    `json:"task_id" yaml:"task_id"`
	IssueNumber         int       `json:"issue_number,omitempty" yaml:"issue_number,omitempty"`
	Stream              string    `json:"stream,omitempty" yaml:"stream,omitempty"`
	StartedAt           time.Time `json:"started_at" yaml:"started_at"`
	EstimatedCompletion time.Time `json:"estimated_completion" yaml:"estimated_completion"`
}

// TaskResult carries the measured outcome of a completed task.
type TaskResult struct {
	ExecutionTime time.Duration `json:"execution_time" yaml:"execution_time"`
	MemoryPeakMB  float64       `json:"memory_peak_mb,omitempty" yaml:"memory_peak_mb,omitempty"`
}

// Performance holds the agent's cumulative task metrics.
type Performance struct {
	SuccessRate        float64       `json:"success_rate" yaml:"success_rate"`
	AvgCompletionTime  time.Duration `json:"avg_completion_time" yaml:"avg_completion_time"`
	ContextEfficiency  float64       `json:"context_efficiency" yaml:"context_efficiency"`
	TotalCompleted     int           `json:"total_completed" yaml:"total_completed"`
	TotalFailed        int           `json:"total_failed" yaml:"total_failed"`
	TotalExecutionTime time.Duration `json:"total_execution_time" yaml:"total_execution_time"`
}

// MemoryUsage tracks the agent's memory pressure and cleanup cadence.
type MemoryUsage struct {
	ContextsActive   int           `json:"contexts_active" yaml:"contexts_active"`
	MemorySizeMB     float64       `json:"memory_size_mb" yaml:"memory_size_mb"`
	PeakMemorySizeMB float64       `json:"peak_memory_size_mb" yaml:"peak_memory_size_mb"`
	LastCleanup      time.Time     `json:"last_cleanup" yaml:"last_cleanup"`
	CleanupFrequency time.Duration `json:"cleanup_frequency" yaml:"cleanup_frequency"`
	RetentionPolicy  string        `json:"retention_policy,omitempty" yaml:"retention_policy,omitempty"`
}

// State is one agent's live runtime state.
type State struct {
	ID           string      `json:"id" yaml:"id"`
	Role         Role        `json:"role" yaml:"role"`
	Status       Status      `json:"status" yaml:"status"`
	CurrentTask  *TaskRef    `json:"current_task,omitempty" yaml:"current_task,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Performance  Performance `json:"performance" yaml:"performance"`
	Memory       MemoryUsage `json:"memory_usage" yaml:"memory_usage"`
}

// NewState creates an idle State for the given role, seeded with the role's
// default capabilities.
func NewState(role Role) (*State, error) {
	if !role.IsValid() {
		return nil, engine.NewValidationError("agent.NewState", engine.ErrInvalidType).
			WithContext(map[string]any{"field": "role", "value": string(role)})
	}
	now := time.Now()
	return &State{
		ID:           uuid.New().String(),
		Role:         role,
		Status:       StatusIdle,
		Capabilities: role.DefaultCapabilities(),
		Memory: MemoryUsage{
			LastCleanup:      now,
			CleanupFrequency: DefaultCleanupFrequency,
		},
	}, nil
}

// StartTask moves the agent to busy and stamps the current task. The
// estimated completion is the start time plus the task's estimated duration,
// DefaultTaskDuration when unset. Returns ErrTaskInProgress if a task is
// already running.
func (s *State) StartTask(task Task) error {
	if s.Status == StatusBusy {
		return ErrTaskInProgress
	}

	estimated := task.EstimatedDuration
	if estimated <= 0 {
		estimated = DefaultTaskDuration
	}

	now := time.Now()
	s.CurrentTask = &TaskRef{
		TaskID:              task.TaskID,
		IssueNumber:         task.IssueNumber,
		Stream:              task.Stream,
		StartedAt:           now,
		EstimatedCompletion: now.Add(estimated),
	}
	s.Status = StatusBusy
	return nil
}

// CompleteTask folds a finished task into the cumulative metrics, clears
// the current task, and settles the status on active for success or error
// for failure. Returns ErrNoActiveTask when no task is running.
//
// SuccessRate and AvgCompletionTime are recomputed over the cumulative
// totals. ContextEfficiency is contexts active per MB of memory, zero when
// no memory is held.
func (s *State) CompleteTask(success bool, result TaskResult) error {
	if s.CurrentTask == nil {
		return ErrNoActiveTask
	}

	if success {
		s.Performance.TotalCompleted++
	} else {
		s.Performance.TotalFailed++
	}
	total := s.Performance.TotalCompleted + s.Performance.TotalFailed
	s.Performance.TotalExecutionTime += result.ExecutionTime
	s.Performance.SuccessRate = float64(s.Performance.TotalCompleted) / float64(total)
	s.Performance.AvgCompletionTime = s.Performance.TotalExecutionTime / time.Duration(total)

	if result.MemoryPeakMB > s.Memory.PeakMemorySizeMB {
		s.Memory.PeakMemorySizeMB = result.MemoryPeakMB
	}
	s.Performance.ContextEfficiency = contextEfficiency(s.Memory)

	s.CurrentTask = nil
	if success {
		s.Status = StatusActive
	} else {
		s.Status = StatusError
	}
	return nil
}

// NeedsCleanup reports whether more than CleanupFrequency has elapsed since
// the last cleanup.
func (s *State) NeedsCleanup() bool {
	freq := s.Memory.CleanupFrequency
	if freq <= 0 {
		freq = DefaultCleanupFrequency
	}
	return time.Since(s.Memory.LastCleanup) > freq
}

// PerformCleanup subtracts the freed resources from the usage counters,
// flooring both at zero, recomputes context efficiency, and stamps the
// cleanup time. The current task and status are untouched.
func (s *State) PerformCleanup(contextsFreed int, memoryFreedMB float64) {
	s.Memory.ContextsActive -= contextsFreed
	if s.Memory.ContextsActive < 0 {
		s.Memory.ContextsActive = 0
	}
	s.Memory.MemorySizeMB -= memoryFreedMB
	if s.Memory.MemorySizeMB < 0 {
		s.Memory.MemorySizeMB = 0
	}
	s.Performance.ContextEfficiency = contextEfficiency(s.Memory)
	s.Memory.LastCleanup = time.Now()
}

// AddCapability adds a capability if not already present.
func (s *State) AddCapability(capability string) {
	for _, c := range s.Capabilities {
		if c == capability {
			return
		}
	}
	s.Capabilities = append(s.Capabilities, capability)
}

// RemoveCapability removes a capability. Removing an absent capability is a
// silent no-op.
func (s *State) RemoveCapability(capability string) {
	for i, c := range s.Capabilities {
		if c == capability {
			s.Capabilities = append(s.Capabilities[:i], s.Capabilities[i+1:]...)
			return
		}
	}
}

// HasCapability reports whether the capability is present.
func (s *State) HasCapability(capability string) bool {
	for _, c := range s.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Validate checks the state invariants.
func (s *State) Validate() error {
	const op = "agent.State.Validate"

	if !s.Role.IsValid() {
		return engine.NewValidationError(op, engine.ErrInvalidType).
			WithContext(map[string]any{"field": "role", "value": string(s.Role)})
	}
	if !s.Status.IsValid() {
		return engine.NewValidationError(op, engine.ErrInvalidType).
			WithContext(map[string]any{"field": "status", "value": string(s.Status)})
	}
	if s.Performance.SuccessRate < 0 || s.Performance.SuccessRate > 1 {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "performance.success_rate", "value": s.Performance.SuccessRate})
	}
	if s.Memory.MemorySizeMB < 0 {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "memory_usage.memory_size_mb", "value": s.Memory.MemorySizeMB})
	}
	if s.Memory.ContextsActive < 0 {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "memory_usage.contexts_active", "value": s.Memory.ContextsActive})
	}
	return nil
}

// ToJSON serializes the state to its canonical JSON form.
func (s *State) ToJSON() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, engine.NewInternalError("agent.State.ToJSON", err)
	}
	return data, nil
}

// FromJSON reconstructs a State from its canonical JSON form. A parse
// failure yields a deserialization error; a payload that parses but
// violates the state invariants yields a validation error.
func FromJSON(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, engine.NewDeserializationError("agent.FromJSON", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Clone produces a new State with a freshly generated identifier, otherwise
// deep-copying all fields, then applying the given overrides.
func (s *State) Clone(overrides ...func(*State)) *State {
	clone := *s
	clone.ID = uuid.New().String()
	clone.Capabilities = append([]string(nil), s.Capabilities...)
	if s.CurrentTask != nil {
		task := *s.CurrentTask
		clone.CurrentTask = &task
	}
	for _, override := range overrides {
		override(&clone)
	}
	return &clone
}

func contextEfficiency(m MemoryUsage) float64 {
	if m.MemorySizeMB == 0 {
		return 0
	}
	return float64(m.ContextsActive) / m.MemorySizeMB
}
