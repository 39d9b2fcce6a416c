package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rentalfigs/internal/config"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunManifest records the outcome of a figure run.
// It is the single source of truth for what a run produced.
type RunManifest struct {
	mu sync.RWMutex

	// Identity
	RunID     string     `json:"run_id"`
	Version   string     `json:"version"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	DataDir  string `json:"data_dir"`
	OutDir   string `json:"out_dir"`
	Workbook string `json:"workbook,omitempty"`

	Figures []StepExecution `json:"figures"`

	Status string `json:"status"` // "running", "completed", "failed"
	Error  string `json:"error,omitempty"`
}

// StepExecution tracks the execution of a single figure
type StepExecution struct {
	StepID     string     `json:"id"`
	StepName   string     `json:"name"`
	Output     string     `json:"output"`
	DataCSV    string     `json:"data_csv,omitempty"`
	Status     StepStatus `json:"status"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	DurationMS int64      `json:"duration_ms"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// NewRunManifest creates a manifest for a run that starts now
func NewRunManifest(runID, dataDir, outDir string) *RunManifest {
	return &RunManifest{
		RunID:     runID,
		Version:   config.AppVersion,
		StartTime: time.Now(),
		DataDir:   dataDir,
		OutDir:    outDir,
		Figures:   []StepExecution{},
		Status:    RunStatusRunning,
	}
}

// AddStep registers a pending figure
func (m *RunManifest) AddStep(step Step) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Figures = append(m.Figures, StepExecution{
		StepID:   step.ID(),
		StepName: step.Name(),
		Output:   step.OutputFile(),
		Status:   StepStatusPending,
	})
}

// RecordStep copies the final state of a step into its entry
func (m *RunManifest) RecordStep(state *StepState) {
	state.mu.RLock()
	exec := StepExecution{
		Status:    state.Status,
		StartTime: state.StartTime,
		EndTime:   state.EndTime,
		Message:   state.Message,
	}
	if state.Error != nil {
		exec.Error = state.Error.Error()
	}
	state.mu.RUnlock()
	exec.DurationMS = state.Duration().Milliseconds()
	exec.DataCSV = state.metadataString(metadataDataCSV)

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Figures {
		if m.Figures[i].StepID == state.ID {
			exec.StepID = m.Figures[i].StepID
			exec.StepName = m.Figures[i].StepName
			exec.Output = m.Figures[i].Output
			m.Figures[i] = exec
			return
		}
	}
}

// SetWorkbook records the figure data workbook
func (m *RunManifest) SetWorkbook(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Workbook = path
}

// Finish sets the end time and derives the run status from the figures
func (m *RunManifest) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.EndTime = &now
	m.Status = RunStatusCompleted
	m.Error = ""

	var failed []string
	for _, f := range m.Figures {
		if f.Status == StepStatusFailed {
			failed = append(failed, f.StepID)
		}
	}
	if len(failed) > 0 {
		m.Status = RunStatusFailed
		m.Error = fmt.Sprintf("figures failed: %s", strings.Join(failed, ", "))
	}
}

// Get returns the entry for a figure
func (m *RunManifest) Get(stepID string) (StepExecution, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.Figures {
		if f.StepID == stepID {
			return f, true
		}
	}
	return StepExecution{}, false
}

// Counts returns the number of figures per status
func (m *RunManifest) Counts() map[StepStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[StepStatus]int)
	for _, f := range m.Figures {
		counts[f.Status]++
	}
	return counts
}

// Summary renders a plain-text overview of the run, one line per figure
func (m *RunManifest) Summary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %s\n", m.RunID, m.Status)
	counts := make(map[StepStatus]int)
	for _, f := range m.Figures {
		counts[f.Status]++
		fmt.Fprintf(&b, "  %-9s %-36s %s\n", f.Status, f.StepID, filepath.Base(f.Output))
		switch {
		case f.Error != "":
			fmt.Fprintf(&b, "            error: %s\n", f.Error)
		case f.Message != "":
			fmt.Fprintf(&b, "            note: %s\n", f.Message)
		}
	}
	fmt.Fprintf(&b, "completed=%d failed=%d skipped=%d\n",
		counts[StepStatusCompleted], counts[StepStatusFailed], counts[StepStatusSkipped])
	return b.String()
}

// SaveToFile writes the manifest as indented JSON, replacing the target
// atomically
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}
