// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    "#7aa2f7",
		Secondary:  "#7dcfff",
		Foreground: "#c0caf5",
		Muted:      "#565f89",
		Background: "#1a1b26",
		Surface:    "#3b4261",
		Success:    "#9ece6a",
		Warning:    "#e0af68",
		Error:      "#f7768e",
	},
	"gruvbox": {
		Primary:    "#83a598",
		Secondary:  "#8ec07c",
		Foreground: "#ebdbb2",
		Muted:      "#665c54",
		Background: "#282828",
		Surface:    "#3c3836",
		Success:    "#b8bb26",
		Warning:    "#fabd2f",
		Error:      "#fb4934",
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

var (
	// List.
	TitleStyle        lipgloss.Style
	FilterLabelStyle  lipgloss.Style
	CursorStyle       lipgloss.Style
	ActiveTaskStyle   lipgloss.Style
	DoneTaskStyle     lipgloss.Style
	SelectedTaskStyle lipgloss.Style
	EmptyStyle        lipgloss.Style
	ErrorStyle        lipgloss.Style
	HelpStyle         lipgloss.Style
	SpinnerStyle      lipgloss.Style

	// Toasts.
	ToastStyle        lipgloss.Style
	ToastSuccessStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	// Detail page.
	DetailFrameStyle lipgloss.Style
	DetailMetaStyle  lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	FilterLabelStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Italic(true)
	CursorStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	ActiveTaskStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	DoneTaskStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Strikethrough(true)
	SelectedTaskStyle = lipgloss.NewStyle().
		Background(p.Surface)
	EmptyStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(1, 2)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)

	ToastStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Foreground(p.Foreground).
		Padding(0, 1)
	ToastSuccessStyle = ToastStyle.BorderForeground(p.Success)
	ToastErrorStyle = ToastStyle.BorderForeground(p.Error)

	DetailFrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	DetailMetaStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	p := CurrentPalette

	cfg.Document.Color = colorPtr(p.Foreground)
	cfg.Paragraph.Color = colorPtr(p.Foreground)

	cfg.Heading.Color = colorPtr(p.Primary)
	cfg.H1.Color = colorPtr(p.Foreground)
	cfg.H1.BackgroundColor = colorPtr(p.Surface)
	for _, h := range []*glamouransi.StyleBlock{&cfg.H2, &cfg.H3, &cfg.H4, &cfg.H5, &cfg.H6} {
		h.Color = colorPtr(p.Primary)
	}

	cfg.BlockQuote.Color = colorPtr(p.Muted)
	cfg.HorizontalRule.Color = colorPtr(p.Muted)
	cfg.Link.Color = colorPtr(p.Secondary)
	cfg.LinkText.Color = colorPtr(p.Secondary)
	cfg.Code.Color = colorPtr(p.Secondary)
	cfg.CodeBlock.Color = colorPtr(p.Muted)

	return cfg
}
