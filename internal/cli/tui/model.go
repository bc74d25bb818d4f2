package tui

import (
	"time"

	"github.com/haskel/mltrack/internal/tracking"
)

// Config holds TUI configuration
type Config struct {
	TrackingURI string
	Experiment  string
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from the tracking store
	runs []tracking.RunInfo

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time
	selected    int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		loading: true,
	}
}
