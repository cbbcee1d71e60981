package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/otaku-mn/otaku/color"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/progress"
	"github.com/otaku-mn/otaku/style"
	"github.com/otaku-mn/otaku/util"
)

// listItem implements the list.Item interface around a progress entry.
type listItem struct {
	entry *progress.Entry
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() string {
	if t.entry.EpisodeInfo != "" {
		return fmt.Sprintf("%s %s", t.entry.Title, style.Faint(t.entry.EpisodeInfo))
	}
	return t.entry.Title
}

// Description renders the watched position as "m:ss / m:ss (NN%)",
// switching to a completion marker past the threshold. The cached thumbnail
// URI is appended when tui.show_thumbnails is enabled.
func (t *listItem) Description() string {
	var progressStr string

	if t.entry.Complete() {
		progressStr = lipgloss.NewStyle().Foreground(color.Green).Render("Watched")
	} else {
		progressStr = fmt.Sprintf("%s / %s",
			util.FormatDurationMs(t.entry.PositionMs),
			util.FormatDurationMs(t.entry.DurationMs),
		)

		if fraction := t.entry.Fraction(); fraction > 0 {
			percent := lipgloss.NewStyle().
				Foreground(color.Yellow).
				Render(fmt.Sprintf(" (%.0f%%)", fraction*100))
			progressStr += percent
		}
	}

	if viper.GetBool(key.TUIShowThumbnails) && t.entry.ThumbnailURI != "" {
		progressStr += " " + style.Faint(t.entry.ThumbnailURI)
	}

	return progressStr
}

// FilterValue returns the string used for real-time list filtering.
func (t *listItem) FilterValue() string {
	return t.entry.Title
}
