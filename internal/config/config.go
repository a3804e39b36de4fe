package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Config holds the application configuration
type Config struct {
	Theme              Theme
	ThemePreset        ThemePreset
	HighContrast       bool
	ShowLineNo         bool
	PageSize           int
	InvalidateDebounce time.Duration
	DefaultFold        FoldDefault
	Keybindings        Keybindings
}

// ThemePreset describes a named theme configuration.
type ThemePreset string

const (
	PresetDefault ThemePreset = "default"
	PresetMono    ThemePreset = "mono"
)

// FoldDefault selects the fold policy applied when a commit is focused.
type FoldDefault string

const (
	FoldAuto      FoldDefault = "auto"
	FoldExpanded  FoldDefault = "expanded"
	FoldCollapsed FoldDefault = "collapsed"
)

// Keybindings maps semantic actions to one or more key sequences.
type Keybindings map[string][]string

// Theme defines the color scheme for the application
type Theme struct {
	AddedFg      lipgloss.Color
	RemovedFg    lipgloss.Color
	ModifiedFg   lipgloss.Color
	FolderFg     lipgloss.Color
	FileFg       lipgloss.Color
	HashFg       lipgloss.Color
	AuthorFg     lipgloss.Color
	DateFg       lipgloss.Color
	LineNumberFg lipgloss.Color
	BorderFg     lipgloss.Color
	TitleFg      lipgloss.Color
	TitleBg      lipgloss.Color
	HelpFg       lipgloss.Color
	TargetBg     lipgloss.Color
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ThemePreset:        PresetDefault,
		Theme:              ThemeForPreset(PresetDefault, false),
		HighContrast:       false,
		ShowLineNo:         true,
		PageSize:           50,
		InvalidateDebounce: 300 * time.Millisecond,
		DefaultFold:        FoldAuto,
		Keybindings:        DefaultKeybindings(),
	}
}

// DefaultTheme returns the default color theme
func DefaultTheme() Theme {
	return Theme{
		AddedFg:      lipgloss.Color("#A8E6A3"),
		RemovedFg:    lipgloss.Color("#E6A3A3"),
		ModifiedFg:   lipgloss.Color("#E6D8A3"),
		FolderFg:     lipgloss.Color("#8AB4F8"),
		FileFg:       lipgloss.Color("#B0B0B0"),
		HashFg:       lipgloss.Color("#C3A6FF"),
		AuthorFg:     lipgloss.Color("#8DD39E"),
		DateFg:       lipgloss.Color("#9CA3AF"),
		LineNumberFg: lipgloss.Color("#666666"),
		BorderFg:     lipgloss.Color("#3A3A3A"),
		TitleFg:      lipgloss.Color("#FFFFFF"),
		TitleBg:      lipgloss.Color("#5F5FAF"),
		HelpFg:       lipgloss.Color("#888888"),
		TargetBg:     lipgloss.Color("#2D3A4A"),
	}
}

// ThemeForPreset resolves a preset name to a concrete Theme, optionally
// applying a high-contrast variation.
func ThemeForPreset(preset ThemePreset, highContrast bool) Theme {
	switch preset {
	case PresetMono:
		return applyContrast(Theme{
			AddedFg:      lipgloss.Color("#FFFFFF"),
			RemovedFg:    lipgloss.Color("#777777"),
			ModifiedFg:   lipgloss.Color("#CCCCCC"),
			FolderFg:     lipgloss.Color("#FFFFFF"),
			FileFg:       lipgloss.Color("#AAAAAA"),
			HashFg:       lipgloss.Color("#DDDDDD"),
			AuthorFg:     lipgloss.Color("#BBBBBB"),
			DateFg:       lipgloss.Color("#888888"),
			LineNumberFg: lipgloss.Color("#555555"),
			BorderFg:     lipgloss.Color("#444444"),
			TitleFg:      lipgloss.Color("#000000"),
			TitleBg:      lipgloss.Color("#CCCCCC"),
			HelpFg:       lipgloss.Color("#777777"),
			TargetBg:     lipgloss.Color("#333333"),
		}, highContrast)
	default:
		return applyContrast(DefaultTheme(), highContrast)
	}
}

// DefaultKeybindings returns the built-in keybinding map.
func DefaultKeybindings() Keybindings {
	return Keybindings{
		"quit":          {"ctrl+c", "q"},
		"toggle_help":   {"?"},
		"select":        {"enter"},
		"toggle_fold":   {"space"},
		"back":          {"esc"},
		"next_page":     {"n"},
		"prev_page":     {"p"},
		"toggle_blame":  {"b"},
		"expand_all":    {"E"},
		"collapse_all":  {"C"},
		"fold_auto":     {"A"},
		"scroll_down":   {"j", "down"},
		"scroll_up":     {"k", "up"},
		"go_top":        {"g"},
		"go_bottom":     {"G"},
		"open_remote":   {"o"},
		"copy_markdown": {"y"},
	}
}

// MergeKeybindings overlays user overrides onto defaults.
func MergeKeybindings(overrides Keybindings) Keybindings {
	defaults := DefaultKeybindings()
	for action, keys := range overrides {
		if len(keys) == 0 {
			continue
		}
		defaults[action] = keys
	}
	return defaults
}

func applyContrast(theme Theme, highContrast bool) Theme {
	if !highContrast {
		return theme
	}
	theme.AddedFg = brighten(theme.AddedFg)
	theme.RemovedFg = brighten(theme.RemovedFg)
	theme.ModifiedFg = brighten(theme.ModifiedFg)
	theme.FolderFg = brighten(theme.FolderFg)
	theme.FileFg = brighten(theme.FileFg)
	theme.HashFg = brighten(theme.HashFg)
	theme.AuthorFg = brighten(theme.AuthorFg)
	theme.DateFg = brighten(theme.DateFg)
	theme.HelpFg = brighten(theme.HelpFg)
	return theme
}

func brighten(c lipgloss.Color) lipgloss.Color {
	return lipgloss.Color(adjustBrightness(string(c), 0.2))
}

func adjustBrightness(hex string, factor float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}

	var r, g, b int
	_, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	if err != nil {
		return hex
	}

	boost := func(value int) int {
		adjusted := float64(value) * (1 + factor)
		if adjusted > 255 {
			adjusted = 255
		}
		return int(adjusted)
	}

	return fmt.Sprintf("#%02x%02x%02x", boost(r), boost(g), boost(b))
}
