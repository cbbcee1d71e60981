// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Catalog Service - these keys manage communication with the remote content catalog.
const (
	CatalogURL = "catalog.url"
)

// Media Playback - these keys govern the playback session state machine and its persistence policy.
const (
	PlayerCompletionThreshold = "player.completion_threshold"
	PlayerSaveInterval        = "player.save_interval"
	PlayerIntroMinimum        = "player.intro_minimum"
	PlayerIntroWindow         = "player.intro_window"
	PlayerAniskip             = "player.aniskip"
	PlayerControlsHideDelay   = "player.controls_hide_delay"
	PlayerAutoAdvance         = "player.auto_advance"
)

// Continue Watching - these keys configure the persistence of playback progress records.
const (
	HistorySize        = "history.size"
	HistorySaveOnWatch = "history.save_on_watch"
)

// Terminal User Interface (TUI) - these keys define the interactive picker's styling and logic.
const (
	TUIItemSpacing    = "tui.item_spacing"
	TUIShowThumbnails = "tui.show_thumbnails"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
