package operations

import (
	"context"
	"sync"
	"time"
)

// DataRequirement specifies an input file a step reads
type DataRequirement struct {
	Path     string `json:"path"`
	Optional bool   `json:"optional"` // Missing optional inputs skip the step
}

// Step represents a single figure in a run
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// OutputFile returns the path the Step writes
	OutputFile() string

	// RequiredInputs returns the files this Step reads
	RequiredInputs() []DataRequirement

	// Execute runs the Step, recording details on state
	Execute(ctx context.Context, state *StepState) error
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Message   string
	Error     error
	Metadata  map[string]interface{}
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the Step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns how long the Step ran. A Step that never started has no
// duration; one still running is measured up to now.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime == nil {
		return time.Since(*s.StartTime)
	}
	return s.EndTime.Sub(*s.StartTime)
}

// SetMetadata sets a metadata value
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Metadata == nil {
		s.Metadata = make(map[string]interface{})
	}
	s.Metadata[key] = value
}

// GetMetadata retrieves a metadata value
func (s *StepState) GetMetadata(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.Metadata[key]
	return value, ok
}

// metadataString returns a string metadata value or ""
func (s *StepState) metadataString(key string) string {
	v, ok := s.GetMetadata(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}
