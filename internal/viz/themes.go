package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the canvas inks and the side panel.
type Theme struct {
	Name     string
	Cloth    lipgloss.Color
	Fixed    lipgloss.Color
	Obstacle lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Cloth:    lipgloss.Color("#00ffff"),
		Fixed:    lipgloss.Color("#ffff00"),
		Obstacle: lipgloss.Color("#ff00ff"),
		Accent:   lipgloss.Color("#ff00ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666666"),
		Warning:  lipgloss.Color("#ff8800"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Cloth:    lipgloss.Color("#00ff00"),
		Fixed:    lipgloss.Color("#88ff88"),
		Obstacle: lipgloss.Color("#007700"),
		Accent:   lipgloss.Color("#88ff88"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeLinen = Theme{
		Name:     "linen",
		Cloth:    lipgloss.Color("#f5e6c8"),
		Fixed:    lipgloss.Color("#d9534f"),
		Obstacle: lipgloss.Color("#8c7b6b"),
		Accent:   lipgloss.Color("#e8a87c"),
		Text:     lipgloss.Color("#fdf6ec"),
		Muted:    lipgloss.Color("#7a6a5a"),
		Warning:  lipgloss.Color("#ffc048"),
		Error:    lipgloss.Color("#ff4757"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Cloth:    lipgloss.Color("#e0f0ff"),
		Fixed:    lipgloss.Color("#ffd700"),
		Obstacle: lipgloss.Color("#0077be"),
		Accent:   lipgloss.Color("#00a8cc"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Warning:  lipgloss.Color("#ffcc00"),
		Error:    lipgloss.Color("#ff4444"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeLinen,
		ThemeOcean,
	}
)

// GetTheme falls back to the first theme for an unknown name.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
