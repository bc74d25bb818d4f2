package config

import (
	"fmt"

	"github.com/haskel/mltrack/internal/dataset"
	"github.com/haskel/mltrack/internal/model"
)

// Validate checks the configuration for values the pipeline cannot run
// with.
func (c *Config) Validate() error {
	if c.Tracking.URI == "" {
		return fmt.Errorf("tracking.uri must not be empty")
	}
	if c.Persistence.Dir == "" {
		return fmt.Errorf("persistence.dir must not be empty")
	}

	if err := c.Data.validate(); err != nil {
		return err
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	names := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d]: name must not be empty", i)
		}
		if _, dup := names[m.Name]; dup {
			return fmt.Errorf("models[%d]: duplicate model name %q", i, m.Name)
		}
		names[m.Name] = struct{}{}
		if !model.Kind(m.Kind).IsValid() {
			return fmt.Errorf("models[%d]: unrecognized kind %q", i, m.Kind)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (d *DataConfig) validate() error {
	switch d.Source {
	case "iris":
	case "csv":
		if d.Path == "" {
			return fmt.Errorf("data.path is required for csv source")
		}
		if d.Target == "" {
			return fmt.Errorf("data.target is required for csv source")
		}
		if !dataset.TaskKind(d.Task).IsValid() {
			return fmt.Errorf("data.task must be regression or classification, got %q", d.Task)
		}
	default:
		return fmt.Errorf("data.source must be iris or csv, got %q", d.Source)
	}

	if d.EvalRatio <= 0 || d.EvalRatio >= 1 {
		return fmt.Errorf("data.eval_ratio must be in (0,1), got %g", d.EvalRatio)
	}
	return nil
}
