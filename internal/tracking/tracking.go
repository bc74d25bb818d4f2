package tracking

import (
	"fmt"

	"github.com/haskel/mltrack/internal/metrics"
	"github.com/haskel/mltrack/internal/model"
)

// RunRecord is the unit persisted to the tracking backend for one model:
// the run name, the configuration parameters, and the computed metrics.
type RunRecord struct {
	Name     string
	Params   map[string]string
	Metrics  metrics.Record
	Features []string
}

// RunHandle identifies a completed run in the backend. Used only for
// optional model registration.
type RunHandle struct {
	RunID        string
	ExperimentID string
	ArtifactPath string
}

// Tracker records runs to an experiment tracking backend.
type Tracker interface {
	// LogRun opens a scoped run, logs parameters and metrics, uploads
	// the serialized model with an inferred signature and example input,
	// and closes the run on every exit path. Any failure is reported as
	// a *TrackingError.
	LogRun(rec RunRecord, m model.FittedModel, sample [][]float64) (RunHandle, error)

	// RegisterModel registers the run's model artifact under a named
	// registry entry. Best-effort: failures are *RegistrationError and
	// never fatal for the run.
	RegisterModel(h RunHandle, registryName string) error
}

// TrackingError wraps any backend failure while logging a run. It is the
// single recoverable error in the pipeline: the caller falls back to an
// untracked retrain-and-persist sequence.
type TrackingError struct {
	Op  string
	Err error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("tracking failed during %s: %v", e.Op, e.Err)
}

func (e *TrackingError) Unwrap() error {
	return e.Err
}

// RegistrationError wraps a failed model registration. Never fatal:
// callers log it and move on.
type RegistrationError struct {
	Name string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register model %q: %v", e.Name, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
