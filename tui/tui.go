// Package tui provides the terminal continue-watching picker.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/otaku-mn/otaku/progress"
)

// Options encapsulates the runtime configuration for the picker.
type Options struct {
	// Title overrides the default list heading.
	Title string
}

// Run shows the continue-watching list and blocks until the user picks an
// entry or quits. Returns nil when the user quit without choosing.
func Run(options *Options) (*progress.Entry, error) {
	if options == nil {
		options = &Options{}
	}

	bubble := newBubble(options)

	if _, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run(); err != nil {
		return nil, err
	}

	return bubble.selected, nil
}
