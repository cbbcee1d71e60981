package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/otaku-mn/otaku/color"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/progress"
	"github.com/otaku-mn/otaku/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

// bubble is the picker's Bubble Tea model: a single list of
// continue-watching entries.
type bubble struct {
	listC  list.Model
	keymap *keymap

	selected *progress.Entry

	width, height int

	options *Options
}

func newBubble(options *Options) *bubble {
	b := &bubble{
		keymap:  newKeymap(),
		options: options,
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(color.Orange).
		Foreground(color.Orange).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	title := options.Title
	if title == "" {
		title = "Continue Watching"
	}

	listC := list.New([]list.Item{}, delegate, 0, 0)
	listC.KeyMap = b.keymap.forList()
	listC.AdditionalShortHelpKeys = b.keymap.ShortHelp
	listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return b.keymap.FullHelp()[0]
	}
	listC.Title = title
	listC.Styles.Title = lipgloss.NewStyle().
		Foreground(color.New("230")).
		Background(color.New("62")).
		Padding(0, 1)
	listC.Styles.NoItems = paddingStyle
	listC.SetShowPagination(false)
	listC.SetShowStatusBar(false)
	listC.SetStatusBarItemName("entry", "entries")

	b.listC = listC
	b.reload()

	if w, h, err := util.TerminalSize(); err == nil {
		b.resize(w, h)
	}

	return b
}

// reload refreshes the list from the store, keeping the cursor stable.
func (b *bubble) reload() {
	items := lo.Map(progress.List(), func(e *progress.Entry, _ int) list.Item {
		return &listItem{entry: e}
	})
	b.listC.SetItems(items)

	if b.listC.Index() >= len(items) && len(items) > 0 {
		b.listC.Select(len(items) - 1)
	}
}

// resize propagates terminal dimension changes to the list.
func (b *bubble) resize(width, height int) {
	b.width = width
	b.height = height

	x, y := paddingStyle.GetFrameSize()
	b.listC.SetSize(width-x, height-y)
}

func (b *bubble) current() *progress.Entry {
	item, ok := b.listC.SelectedItem().(*listItem)
	if !ok {
		return nil
	}
	return item.entry
}

func (b *bubble) Init() tea.Cmd {
	return nil
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tea.KeyMsg:
		// Keys pass through to the list while the filter input is open.
		if b.listC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if entry := b.current(); entry != nil {
				b.selected = entry
				return b, tea.Quit
			}
		case bubblesKey.Matches(msg, b.keymap.remove):
			if entry := b.current(); entry != nil {
				// Removal failures are not fatal to the picker.
				_ = progress.Remove(entry.AnimeID, entry.EpisodeID)
				b.reload()
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.listC, cmd = b.listC.Update(msg)
	return b, cmd
}

func (b *bubble) View() string {
	return paddingStyle.Render(b.listC.View())
}
