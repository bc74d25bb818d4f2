package config

// Config is the full pipeline configuration.
type Config struct {
	Tracking    TrackingConfig    `yaml:"tracking"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Data        DataConfig        `yaml:"data"`
	Models      []ModelConfig     `yaml:"models"`
	Logging     LoggingConfig     `yaml:"logging"`

	// Automation disables optional model registration so unattended
	// runs never require registry permissions. An explicit policy flag,
	// not environment sensing; the CLI may seed it from CI-style env
	// variables.
	Automation bool `yaml:"automation"`
}

// TrackingConfig addresses the experiment tracking backend.
type TrackingConfig struct {
	// URI is the tracking root; a local filesystem directory.
	URI        string `yaml:"uri"`
	Experiment string `yaml:"experiment"`
}

// PersistenceConfig holds the local model artifact directory.
type PersistenceConfig struct {
	Dir string `yaml:"dir"`
}

// DataConfig describes the input dataset.
type DataConfig struct {
	// Source is "iris" for the in-process reference dataset or "csv"
	// for a file.
	Source string `yaml:"source"`

	// CSV source settings.
	Path   string `yaml:"path"`
	Target string `yaml:"target"`
	Task   string `yaml:"task"`

	// EvalRatio is the fraction of rows held out for evaluation.
	EvalRatio float64 `yaml:"eval_ratio"`
	Seed      int64   `yaml:"seed"`
}

// ModelConfig describes one model to train.
type ModelConfig struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`

	// Hyperparameters; zero values use per-algorithm defaults.
	MaxDepth     int     `yaml:"max_depth"`
	NEstimators  int     `yaml:"n_estimators"`
	MaxIter      int     `yaml:"max_iter"`
	LearningRate float64 `yaml:"learning_rate"`

	// Register names the registry entry to register the tracked
	// artifact under. Empty disables registration for this model.
	Register string `yaml:"register"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
