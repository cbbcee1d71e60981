// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/otaku-mn/otaku/color"
	"github.com/otaku-mn/otaku/constant"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Otaku + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.CatalogURL, "", "Base URL of the content catalog service.\nEpisode metadata and stream URIs are fetched from here once per playback session")
	register(key.PlayerCompletionThreshold, 0.95, "Watched fraction at which an episode counts as complete.\nCompleted episodes restart from the beginning instead of resuming")
	register(key.PlayerSaveInterval, "10s", "Minimum interval between progress writes during playback.\nA final write is always issued when the player closes")
	register(key.PlayerIntroMinimum, "30s", "Playback offset at which the skip-intro affordance becomes available")
	register(key.PlayerIntroWindow, "90s", "Playback offset past which the skip-intro affordance is hidden.\nAlso the target of the skip seek when no aniskip data is available")
	register(key.PlayerAniskip, true, "Fetch real opening intervals from the AniSkip service\nwhen the episode carries a MyAnimeList ID")
	register(key.PlayerControlsHideDelay, "3s", "Delay before on-screen controls are hidden during playback")
	register(key.PlayerAutoAdvance, true, "Automatically start the next episode when the current one finishes")
	register(key.HistorySize, 20, "Maximum number of continue-watching entries kept.\nThe oldest entry is evicted first on overflow")
	register(key.HistorySaveOnWatch, true, "Persist playback progress while watching")
	register(key.TUIItemSpacing, 1, "Spacing between items in the continue-watching picker")
	register(key.TUIShowThumbnails, false, "Show thumbnail URLs under picker items")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"value":  func(k string) any { return viper.Get(k) },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}`))
