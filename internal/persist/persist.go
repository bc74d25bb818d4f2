// Package persist writes fitted models to deterministic local paths so a
// training run is never lost, even when the experiment tracker is down.
package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haskel/mltrack/internal/model"
)

// PersistenceError reports a filesystem-level fault while saving a model.
// Fatal for the affected model in both the tracked and fallback paths.
type PersistenceError struct {
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist model %q: %v", e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// envelope wraps serialized model state with its kind so files are
// self-describing at load time.
type envelope struct {
	Kind  model.Kind      `json:"kind"`
	Model json.RawMessage `json:"model"`
}

// Store persists fitted models under a root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory is created
// lazily on first save.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Path returns the deterministic file path for a model name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, name+".json")
}

// Save serializes the fitted model to its deterministic path,
// overwriting any previous file. The write goes through a temp file and
// an atomic rename so a crash never leaves a truncated model behind.
func (s *Store) Save(m model.FittedModel, name string) (string, error) {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return "", &PersistenceError{Name: name, Err: err}
	}

	path := s.Path(name)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return "", &PersistenceError{Name: name, Err: err}
	}

	if err := writeEnvelope(file, m); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", &PersistenceError{Name: name, Err: err}
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", &PersistenceError{Name: name, Err: err}
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", &PersistenceError{Name: name, Err: err}
	}

	return path, nil
}

func writeEnvelope(file *os.File, m model.FittedModel) error {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	return json.NewEncoder(file).Encode(envelope{Kind: m.Kind(), Model: json.RawMessage(buf.Bytes())})
}

// Load reads a previously saved model back.
func (s *Store) Load(name string) (model.FittedModel, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, &PersistenceError{Name: name, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &PersistenceError{Name: name, Err: err}
	}

	m, err := model.Load(env.Kind, bytes.NewReader(env.Model))
	if err != nil {
		return nil, &PersistenceError{Name: name, Err: err}
	}
	return m, nil
}

// Exists reports whether a saved model file exists for the name.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}
