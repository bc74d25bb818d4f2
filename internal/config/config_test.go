package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("expected default config to validate: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tracking:
  uri: /tmp/mlruns
  experiment: housing
data:
  source: csv
  path: housing.csv
  target: MedHouseVal
  task: regression
  eval_ratio: 0.25
  seed: 7
models:
  - kind: linear-regressor
    name: LinearRegression
  - kind: shallow-decision-tree
    name: DecisionTree
    max_depth: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Tracking.URI != "/tmp/mlruns" || cfg.Tracking.Experiment != "housing" {
		t.Errorf("unexpected tracking config %+v", cfg.Tracking)
	}
	if cfg.Data.Source != "csv" || cfg.Data.EvalRatio != 0.25 || cfg.Data.Seed != 7 {
		t.Errorf("unexpected data config %+v", cfg.Data)
	}
	if len(cfg.Models) != 2 || cfg.Models[1].MaxDepth != 3 {
		t.Errorf("unexpected models %+v", cfg.Models)
	}
	// Untouched sections keep defaults.
	if cfg.Persistence.Dir != "models" {
		t.Errorf("expected default persistence dir, got %q", cfg.Persistence.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default logging level, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("MLTRACK_TEST_URI", "/srv/mlruns")

	path := writeConfig(t, `
tracking:
  uri: ${MLTRACK_TEST_URI}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Tracking.URI != "/srv/mlruns" {
		t.Errorf("expected env-substituted uri, got %q", cfg.Tracking.URI)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "empty tracking uri",
			mutate: func(c *Config) { c.Tracking.URI = "" },
			want:   "tracking.uri",
		},
		{
			name:   "empty persistence dir",
			mutate: func(c *Config) { c.Persistence.Dir = "" },
			want:   "persistence.dir",
		},
		{
			name:   "unknown data source",
			mutate: func(c *Config) { c.Data.Source = "parquet" },
			want:   "data.source",
		},
		{
			name:   "csv without path",
			mutate: func(c *Config) { c.Data.Source = "csv"; c.Data.Target = "y"; c.Data.Task = "regression" },
			want:   "data.path",
		},
		{
			name:   "csv without target",
			mutate: func(c *Config) { c.Data.Source = "csv"; c.Data.Path = "x.csv"; c.Data.Task = "regression" },
			want:   "data.target",
		},
		{
			name:   "ratio out of range",
			mutate: func(c *Config) { c.Data.EvalRatio = 1.0 },
			want:   "eval_ratio",
		},
		{
			name:   "no models",
			mutate: func(c *Config) { c.Models = nil },
			want:   "at least one model",
		},
		{
			name:   "unnamed model",
			mutate: func(c *Config) { c.Models[0].Name = "" },
			want:   "name must not be empty",
		},
		{
			name:   "duplicate model names",
			mutate: func(c *Config) { c.Models[1].Name = c.Models[0].Name },
			want:   "duplicate model name",
		},
		{
			name:   "unknown model kind",
			mutate: func(c *Config) { c.Models[0].Kind = "svm" },
			want:   "unrecognized kind",
		},
		{
			name:   "bad logging level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
		{
			name:   "bad logging format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
