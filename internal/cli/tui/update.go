package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/mltrack/internal/logger"
	"github.com/haskel/mltrack/internal/tracking"
)

type runsMsg struct {
	runs []tracking.RunInfo
	err  error
}

// fetchRuns reads the run list from the tracking store.
func fetchRuns(cfg Config) tea.Cmd {
	return func() tea.Msg {
		log := logger.NewWithWriter(io.Discard, "error", "text")
		store := tracking.NewFileStore(cfg.TrackingURI, cfg.Experiment, log)
		runs, err := store.ListRuns()
		return runsMsg{runs: runs, err: err}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return fetchRuns(m.config)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case runsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.runs = msg.runs
			m.lastUpdated = time.Now()
			if m.selected >= len(m.runs) {
				m.selected = 0
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		// Manual refresh
		m.loading = true
		return m, fetchRuns(m.config)

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.runs)-1 {
			m.selected++
		}
		return m, nil
	}

	return m, nil
}
