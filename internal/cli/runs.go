package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haskel/mltrack/internal/logger"
	"github.com/haskel/mltrack/internal/tracking"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded in the tracking store",
	Long: `List all runs in the tracking store, newest first.

Examples:
  mltrack runs
  mltrack runs --tracking-uri ./mlruns --json`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trackingURI != "" {
		cfg.Tracking.URI = trackingURI
	}

	log := logger.New("error", "text")
	store := tracking.NewFileStore(cfg.Tracking.URI, cfg.Tracking.Experiment, log)

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}

	if jsonOut {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded in", cfg.Tracking.URI)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tNAME\tSTATUS\tSTARTED\tMETRICS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(run.RunID),
			run.RunName,
			run.Status,
			run.StartTime.Format("2006-01-02 15:04:05"),
			formatMetrics(run.Metrics),
		)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatMetrics(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, m[name]))
	}
	return strings.Join(parts, " ")
}
