package config

func Default() *Config {
	return &Config{
		Tracking: TrackingConfig{
			URI:        "./mlruns",
			Experiment: "default",
		},
		Persistence: PersistenceConfig{
			Dir: "models",
		},
		Data: DataConfig{
			Source:    "iris",
			EvalRatio: 0.2,
			Seed:      42,
		},
		Models: []ModelConfig{
			{
				Kind:    "logistic-classifier",
				Name:    "LogisticRegression",
				MaxIter: 100,
			},
			{
				Kind:        "random-forest-classifier",
				Name:        "RandomForest",
				NEstimators: 50,
				Register:    "IrisClassifierModel",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Automation: false,
	}
}
