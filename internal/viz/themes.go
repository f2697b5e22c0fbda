package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the lattice views. States holds one colour per spin state;
// Potts models with more states than colours reuse them cyclically.
type Theme struct {
	Name     string
	States   []lipgloss.Color
	Vacant   lipgloss.Color
	Occupied lipgloss.Color
	Spanning lipgloss.Color
	Disk     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name: "cyberpunk",
		States: []lipgloss.Color{
			"#00ffff", "#ff00ff", "#ffff00", "#00ff88",
			"#ff8800", "#8888ff", "#ff4444", "#ffffff",
		},
		Vacant:   lipgloss.Color("#1a1a1a"),
		Occupied: lipgloss.Color("#00ccff"),
		Spanning: lipgloss.Color("#ff00ff"),
		Disk:     lipgloss.Color("#00ff88"),
	}

	ThemeRetroGreen = Theme{
		Name: "retro",
		States: []lipgloss.Color{
			"#003300", "#00ff00", "#88ff88", "#00aa00",
			"#ccffcc", "#006600", "#44cc44", "#eeffee",
		},
		Vacant:   lipgloss.Color("#001100"),
		Occupied: lipgloss.Color("#00aa00"),
		Spanning: lipgloss.Color("#88ff88"),
		Disk:     lipgloss.Color("#00ff00"),
	}

	ThemeOcean = Theme{
		Name: "ocean",
		States: []lipgloss.Color{
			"#0077be", "#ffd700", "#00a8cc", "#e0f0ff",
			"#4488aa", "#ffcc00", "#00ff88", "#ff4444",
		},
		Vacant:   lipgloss.Color("#001a33"),
		Occupied: lipgloss.Color("#00a8cc"),
		Spanning: lipgloss.Color("#ffd700"),
		Disk:     lipgloss.Color("#e0f0ff"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// StateColor maps a spin value to a colour. Ising -1/+1 use the first two.
func (t Theme) StateColor(s int) lipgloss.Color {
	if s == -1 {
		s = 0
	}
	return t.States[s%len(t.States)]
}
