package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haskel/mltrack/internal/config"
	"github.com/haskel/mltrack/internal/dataset"
	"github.com/haskel/mltrack/internal/logger"
	"github.com/haskel/mltrack/internal/model"
	"github.com/haskel/mltrack/internal/persist"
	"github.com/haskel/mltrack/internal/pipeline"
	"github.com/haskel/mltrack/internal/tracking"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train all configured models and record the runs",
	Long: `Train every configured model, evaluate it on a held-out split, log the
run to the tracking store and persist the fitted model locally.

When the tracking store is unavailable the pipeline falls back to an
untracked retrain-and-persist sequence, so model files are produced
either way. Exits non-zero if any model ultimately failed.

Examples:
  mltrack train                                    # iris reference dataset
  mltrack train --config configs/housing.yaml
  mltrack train --data data/housing.csv --target MedHouseVal --task regression`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

var (
	trainData      string
	trainTarget    string
	trainTask      string
	trainModelsDir string
	trainAutomated bool
)

func init() {
	trainCmd.Flags().StringVar(&trainData, "data", "", "CSV dataset path (switches data source to csv)")
	trainCmd.Flags().StringVar(&trainTarget, "target", "", "target column name for csv data")
	trainCmd.Flags().StringVar(&trainTask, "task", "", "task kind for csv data: regression or classification")
	trainCmd.Flags().StringVar(&trainModelsDir, "models-dir", "", "local model artifact directory (overrides config)")
	trainCmd.Flags().BoolVar(&trainAutomated, "automated", false, "automated run: skip optional model registration")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyTrainFlags(cfg)

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	specs := make([]pipeline.ModelSpec, 0, len(cfg.Models))
	for _, mc := range cfg.Models {
		specs = append(specs, pipeline.ModelSpec{
			Config: model.Config{
				Kind: model.Kind(mc.Kind),
				Name: mc.Name,
				Params: model.Params{
					MaxDepth:     mc.MaxDepth,
					NEstimators:  mc.NEstimators,
					MaxIter:      mc.MaxIter,
					LearningRate: mc.LearningRate,
				},
				Seed: cfg.Data.Seed,
			},
			Register: mc.Register,
		})
	}

	orch := pipeline.New(pipeline.Options{
		Data:      ds,
		EvalRatio: cfg.Data.EvalRatio,
		Seed:      cfg.Data.Seed,
		Specs:     specs,
		Tracker:   tracking.NewFileStore(cfg.Tracking.URI, cfg.Tracking.Experiment, log),
		Store:     persist.NewStore(cfg.Persistence.Dir),
		Logger:    log,
		Automated: cfg.Automation,
	})

	summary, err := orch.Run()
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range summary.Results {
		fmt.Println(formatResult(res))
		if !res.OK() {
			failed++
		}
	}

	if !summary.OK {
		return fmt.Errorf("training failed for %d of %d models", failed, len(summary.Results))
	}
	return nil
}

func applyTrainFlags(cfg *config.Config) {
	if trainData != "" {
		cfg.Data.Source = "csv"
		cfg.Data.Path = trainData
	}
	if trainTarget != "" {
		cfg.Data.Target = trainTarget
	}
	if trainTask != "" {
		cfg.Data.Task = trainTask
	}
	if trackingURI != "" {
		cfg.Tracking.URI = trackingURI
	}
	if trainModelsDir != "" {
		cfg.Persistence.Dir = trainModelsDir
	}
	if trainAutomated || os.Getenv("CI") != "" || os.Getenv("MLTRACK_AUTOMATED") != "" {
		cfg.Automation = true
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Data.Source {
	case "iris":
		return dataset.Iris(), nil
	default:
		return dataset.LoadCSV(cfg.Data.Path, cfg.Data.Target, dataset.TaskKind(cfg.Data.Task))
	}
}

func formatResult(res pipeline.ModelResult) string {
	if !res.OK() {
		return fmt.Sprintf("FAILED: %s | %v", res.Name, res.Err)
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, res.Metrics[name]))
	}

	line := fmt.Sprintf("SUCCESS: %s | %s | saved to %s", res.Name, strings.Join(parts, " "), res.ArtifactPath)
	if res.FellBack {
		line += " (fallback)"
	}
	return line
}
