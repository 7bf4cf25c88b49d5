package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Status represents the status of an operation run
type Status string

const (
	// StatusPending indicates the operation has not started
	StatusPending Status = "pending"
	// StatusRunning indicates the operation is in progress
	StatusRunning Status = "running"
	// StatusCompleted indicates the operation finished successfully
	StatusCompleted Status = "completed"
	// StatusFailed indicates the operation stopped with an error
	StatusFailed Status = "failed"
)

// Report describes one top-level operation of a run
type Report struct {
	// RunID correlates the report with the run's log lines
	RunID string `json:"run_id"`
	// Operation is the command that was executed, e.g. delete
	Operation string `json:"operation"`
	// Args are the positional values given to the operation
	Args []string `json:"args,omitempty"`
	// Status indicates the current status of the operation
	Status Status `json:"status"`
	// KeysProcessed counts keys copied, deleted or reported
	KeysProcessed int `json:"keys_processed"`
	// Error contains the error message if the operation failed
	Error string `json:"error,omitempty"`
	// StartTime is when the operation started
	StartTime time.Time `json:"start_time"`
	// EndTime is when the operation finished
	EndTime *time.Time `json:"end_time,omitempty"`
	// ExitCode is the process exit status for this operation
	ExitCode int `json:"exit_code"`
}

// New creates a pending report
func New(runID, operation string, args []string) *Report {
	return &Report{
		RunID:     runID,
		Operation: operation,
		Args:      args,
		Status:    StatusPending,
		StartTime: time.Now(),
	}
}

// SetRunning marks the operation as running
func (r *Report) SetRunning() {
	r.Status = StatusRunning
	r.StartTime = time.Now()
}

// SetCompleted marks the operation as completed
func (r *Report) SetCompleted(keys int) {
	r.Status = StatusCompleted
	r.KeysProcessed = keys
	r.ExitCode = 0
	now := time.Now()
	r.EndTime = &now
}

// SetFailed marks the operation as failed with the given error
func (r *Report) SetFailed(keys int, err error) {
	r.Status = StatusFailed
	r.KeysProcessed = keys
	r.Error = err.Error()
	r.ExitCode = 1
	now := time.Now()
	r.EndTime = &now
}

// Duration returns how long the operation ran, or has been running
func (r *Report) Duration() time.Duration {
	if r.EndTime == nil {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Fields returns the report as zap fields
func (r *Report) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("operation", r.Operation),
		zap.String("status", string(r.Status)),
		zap.Int("keys_processed", r.KeysProcessed),
		zap.Duration("duration", r.Duration()),
	}
	if r.Error != "" {
		fields = append(fields, zap.String("error", r.Error))
	}
	return fields
}

// ToJSON converts the report to a JSON string
func (r *Report) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// WriteFile stores the report as JSON at path
func (r *Report) WriteFile(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
