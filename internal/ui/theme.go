package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string
	Dark bool

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// LevelColors map log levels to colors.
	LevelColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 2),

		CardFocus: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(0, 2),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(1, 2),

		levelColors: t.LevelColors,
		muted:       t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	Card      lipgloss.Style
	CardFocus lipgloss.Style
	Modal     lipgloss.Style

	levelColors map[string]string
	muted       string
}

// LevelStyle returns a style for the given log level.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	color := s.levelColors[level]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Theme definitions

func huntarrTheme() Theme {
	return Theme{
		Name:          "Huntarr",
		Dark:          true,
		Background:    "#121212",
		Surface:       "#1e1e1e",
		SurfaceAlt:    "#252525",
		SelectionBg:   "#2d4f67",
		SelectionText: "#dcd7ba",
		Border:        "#3a3a3a",
		BorderFocus:   "#e96610",
		Text:          "#e0e0e0",
		Muted:         "#9e9e9e",
		Faint:         "#616161",
		Accent:        "#e96610",
		Success:       "#66bb6a",
		Warning:       "#ffa726",
		Danger:        "#ef5350",
		Info:          "#42a5f5",
		LevelColors: map[string]string{
			"debug":   "#9e9e9e",
			"info":    "#42a5f5",
			"warning": "#ffa726",
			"error":   "#ef5350",
		},
	}
}

func lightTheme() Theme {
	return Theme{
		Name:          "Light",
		Dark:          false,
		Background:    "#fafafa",
		Surface:       "#eeeeee",
		SurfaceAlt:    "#e0e0e0",
		SelectionBg:   "#bbdefb",
		SelectionText: "#212121",
		Border:        "#bdbdbd",
		BorderFocus:   "#e96610",
		Text:          "#212121",
		Muted:         "#616161",
		Faint:         "#9e9e9e",
		Accent:        "#bf360c",
		Success:       "#2e7d32",
		Warning:       "#ef6c00",
		Danger:        "#c62828",
		Info:          "#1565c0",
		LevelColors: map[string]string{
			"debug":   "#757575",
			"info":    "#1565c0",
			"warning": "#ef6c00",
			"error":   "#c62828",
		},
	}
}

func slateTheme() Theme {
	return Theme{
		Name:          "Slate",
		Dark:          true,
		Background:    "#0f172a",
		Surface:       "#1e293b",
		SurfaceAlt:    "#334155",
		SelectionBg:   "#475569",
		SelectionText: "#f1f5f9",
		Border:        "#334155",
		BorderFocus:   "#38bdf8",
		Text:          "#e2e8f0",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#4ade80",
		Warning:       "#facc15",
		Danger:        "#f87171",
		Info:          "#818cf8",
		LevelColors: map[string]string{
			"debug":   "#94a3b8",
			"info":    "#818cf8",
			"warning": "#facc15",
			"error":   "#f87171",
		},
	}
}

var themes = map[string]Theme{
	"Huntarr": huntarrTheme(),
	"Light":   lightTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Huntarr", "Slate", "Light"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return huntarrTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}
