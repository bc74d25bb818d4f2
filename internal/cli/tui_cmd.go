package cli

import (
	"github.com/spf13/cobra"

	"github.com/haskel/mltrack/internal/cli/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive browser for recorded runs",
	Long:  `Open an interactive terminal browser over the tracking store.`,
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trackingURI != "" {
		cfg.Tracking.URI = trackingURI
	}

	return tui.Run(tui.Config{
		TrackingURI: cfg.Tracking.URI,
		Experiment:  cfg.Tracking.Experiment,
	})
}
