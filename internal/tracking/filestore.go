package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/haskel/mltrack/internal/model"
	"github.com/haskel/mltrack/internal/tracking/sysinfo"
)

// Run status values, matching the MLflow lifecycle.
const (
	StatusRunning  = "RUNNING"
	StatusFinished = "FINISHED"
	StatusFailed   = "FAILED"
)

const (
	defaultExperimentID = "0"
	metaFileName        = "meta.yaml"
	artifactModelDir    = "model"
)

// FileStore is a filesystem-backed tracking store rooted at a tracking
// URI directory. Layout per run:
//
//	<root>/<experiment>/<run_id>/meta.yaml
//	<root>/<experiment>/<run_id>/params/<name>
//	<root>/<experiment>/<run_id>/metrics/<name>
//	<root>/<experiment>/<run_id>/tags/<name>
//	<root>/<experiment>/<run_id>/artifacts/model/...
//
// Registered models live under <root>/models/<registry_name>/.
type FileStore struct {
	root       string
	expID      string
	expName    string
	logger     *slog.Logger
	systemTags map[string]string
}

// NewFileStore creates a tracking store under root. Nothing is written
// until the first run is logged, so an unreachable root surfaces as a
// TrackingError at log time, not construction time.
func NewFileStore(root, experiment string, logger *slog.Logger) *FileStore {
	if experiment == "" {
		experiment = "default"
	}
	return &FileStore{
		root:       root,
		expID:      defaultExperimentID,
		expName:    experiment,
		logger:     logger,
		systemTags: sysinfo.Collect(),
	}
}

// Root returns the tracking root directory.
func (s *FileStore) Root() string {
	return s.root
}

type runMeta struct {
	RunID        string `yaml:"run_id"`
	RunName      string `yaml:"run_name"`
	ExperimentID string `yaml:"experiment_id"`
	Status       string `yaml:"status"`
	StartTime    int64  `yaml:"start_time"`
	EndTime      int64  `yaml:"end_time,omitempty"`
}

type experimentMeta struct {
	ExperimentID     string `yaml:"experiment_id"`
	Name             string `yaml:"name"`
	ArtifactLocation string `yaml:"artifact_location"`
}

type registeredModelMeta struct {
	Name      string `yaml:"name"`
	CreatedAt int64  `yaml:"created_at"`
}

type modelVersionMeta struct {
	Name      string `yaml:"name"`
	Version   int    `yaml:"version"`
	RunID     string `yaml:"run_id"`
	Source    string `yaml:"source"`
	Status    string `yaml:"status"`
	CreatedAt int64  `yaml:"created_at"`
}

// LogRun opens a run, writes parameters, metrics, tags and the model
// artifact, and closes the run on every exit path: FINISHED on success,
// FAILED when any step errors. Failures are reported as *TrackingError.
func (s *FileStore) LogRun(rec RunRecord, m model.FittedModel, sample [][]float64) (RunHandle, error) {
	runID := newRunID()
	runDir := filepath.Join(s.root, s.expID, runID)

	if err := s.ensureExperiment(); err != nil {
		return RunHandle{}, &TrackingError{Op: "start run", Err: err}
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return RunHandle{}, &TrackingError{Op: "start run", Err: err}
	}

	meta := runMeta{
		RunID:        runID,
		RunName:      rec.Name,
		ExperimentID: s.expID,
		Status:       StatusRunning,
		StartTime:    time.Now().UnixMilli(),
	}
	if err := s.writeYAML(filepath.Join(runDir, metaFileName), meta); err != nil {
		return RunHandle{}, &TrackingError{Op: "start run", Err: err}
	}

	logErr := s.logRunContents(runDir, rec, m, sample)

	// Scoped close: the run meta is finalized whether or not logging
	// succeeded, so no RUNNING contexts leak into the fallback attempt.
	meta.EndTime = time.Now().UnixMilli()
	if logErr != nil {
		meta.Status = StatusFailed
		if err := s.writeYAML(filepath.Join(runDir, metaFileName), meta); err != nil {
			s.logger.Warn("failed to close tracking run", "run_id", runID, "error", err)
		}
		return RunHandle{}, logErr
	}

	meta.Status = StatusFinished
	if err := s.writeYAML(filepath.Join(runDir, metaFileName), meta); err != nil {
		return RunHandle{}, &TrackingError{Op: "close run", Err: err}
	}

	s.logger.Debug("logged tracking run", "run_id", runID, "run_name", rec.Name)
	return RunHandle{
		RunID:        runID,
		ExperimentID: s.expID,
		ArtifactPath: filepath.Join(runDir, "artifacts", artifactModelDir),
	}, nil
}

func (s *FileStore) logRunContents(runDir string, rec RunRecord, m model.FittedModel, sample [][]float64) error {
	// Parameters: model name first, then algorithm parameters.
	params := map[string]string{"model_name": rec.Name}
	for k, v := range rec.Params {
		params[k] = v
	}
	for name, value := range params {
		if err := s.writeEntry(runDir, "params", name, value); err != nil {
			return &TrackingError{Op: "log param", Err: err}
		}
	}

	now := time.Now().UnixMilli()
	for name, value := range rec.Metrics {
		line := fmt.Sprintf("%d %g 0", now, value)
		if err := s.writeEntry(runDir, "metrics", name, line); err != nil {
			return &TrackingError{Op: "log metric", Err: err}
		}
	}

	tags := map[string]string{"mlflow.runName": rec.Name}
	for k, v := range s.systemTags {
		tags[k] = v
	}
	for name, value := range tags {
		if err := s.writeEntry(runDir, "tags", name, value); err != nil {
			return &TrackingError{Op: "log tag", Err: err}
		}
	}

	if err := s.logModelArtifact(runDir, rec, m, sample); err != nil {
		return &TrackingError{Op: "log model", Err: err}
	}
	return nil
}

func (s *FileStore) logModelArtifact(runDir string, rec RunRecord, m model.FittedModel, sample [][]float64) error {
	dir := filepath.Join(runDir, "artifacts", artifactModelDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "model.json"), buf.Bytes(), 0644); err != nil {
		return err
	}

	sig := inferSignature(rec.Features)
	if err := s.writeJSON(filepath.Join(dir, "signature.json"), sig); err != nil {
		return err
	}

	if len(sample) > 0 {
		example := InputExample{Columns: rec.Features, Data: sample[:1]}
		if err := s.writeJSON(filepath.Join(dir, "input_example.json"), example); err != nil {
			return err
		}
	}
	return nil
}

// RegisterModel records the run's artifact as the next version of a named
// registry entry. Failures come back as *RegistrationError and must never
// fail the run.
func (s *FileStore) RegisterModel(h RunHandle, registryName string) error {
	if registryName == "" {
		return &RegistrationError{Name: registryName, Err: fmt.Errorf("empty registry name")}
	}
	dir := filepath.Join(s.root, "models", registryName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &RegistrationError{Name: registryName, Err: err}
	}

	metaPath := filepath.Join(dir, metaFileName)
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		meta := registeredModelMeta{Name: registryName, CreatedAt: time.Now().UnixMilli()}
		if err := s.writeYAML(metaPath, meta); err != nil {
			return &RegistrationError{Name: registryName, Err: err}
		}
	}

	version, err := nextVersion(dir)
	if err != nil {
		return &RegistrationError{Name: registryName, Err: err}
	}
	versionDir := filepath.Join(dir, fmt.Sprintf("version-%d", version))
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return &RegistrationError{Name: registryName, Err: err}
	}

	vm := modelVersionMeta{
		Name:      registryName,
		Version:   version,
		RunID:     h.RunID,
		Source:    h.ArtifactPath,
		Status:    "READY",
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.writeYAML(filepath.Join(versionDir, metaFileName), vm); err != nil {
		return &RegistrationError{Name: registryName, Err: err}
	}

	s.logger.Debug("registered model", "name", registryName, "version", version, "run_id", h.RunID)
	return nil
}

func nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "version-") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "version-"))
		if err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

// RunInfo is a read-side summary of one stored run.
type RunInfo struct {
	RunID     string
	RunName   string
	Status    string
	StartTime time.Time
	EndTime   time.Time
	Params    map[string]string
	Metrics   map[string]float64
}

// ListRuns returns all runs of the store's experiment, newest first.
func (s *FileStore) ListRuns() ([]RunInfo, error) {
	expDir := filepath.Join(s.root, s.expID)
	entries, err := os.ReadDir(expDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tracking store: %w", err)
	}

	runs := make([]RunInfo, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		runDir := filepath.Join(expDir, e.Name())
		data, err := os.ReadFile(filepath.Join(runDir, metaFileName))
		if err != nil {
			continue
		}
		var meta runMeta
		if err := yaml.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, RunInfo{
			RunID:     meta.RunID,
			RunName:   meta.RunName,
			Status:    meta.Status,
			StartTime: time.UnixMilli(meta.StartTime),
			EndTime:   time.UnixMilli(meta.EndTime),
			Params:    readEntryDir(filepath.Join(runDir, "params")),
			Metrics:   readMetricDir(filepath.Join(runDir, "metrics")),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs, nil
}

func readEntryDir(dir string) map[string]string {
	out := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		out[e.Name()] = strings.TrimSpace(string(data))
	}
	return out
}

func readMetricDir(dir string) map[string]float64 {
	out := make(map[string]float64)
	for name, line := range readEntryDir(dir) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
			out[name] = v
		}
	}
	return out
}

func (s *FileStore) ensureExperiment() error {
	expDir := filepath.Join(s.root, s.expID)
	if err := os.MkdirAll(expDir, 0755); err != nil {
		return err
	}
	metaPath := filepath.Join(expDir, metaFileName)
	if _, err := os.Stat(metaPath); err == nil {
		return nil
	}
	meta := experimentMeta{
		ExperimentID:     s.expID,
		Name:             s.expName,
		ArtifactLocation: expDir,
	}
	return s.writeYAML(metaPath, meta)
}

func (s *FileStore) writeEntry(runDir, kind, name, value string) error {
	dir := filepath.Join(runDir, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644)
}

func (s *FileStore) writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *FileStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func newRunID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
