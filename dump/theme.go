package dump

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colours of a theme. Empty colours leave the terminal
// default in place.
type Palette struct {
	Tag       lipgloss.TerminalColor
	Component lipgloss.TerminalColor
	Slot      lipgloss.TerminalColor
	PropKey   lipgloss.TerminalColor
	PropValue lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	Comment   lipgloss.TerminalColor
	Raw       lipgloss.TerminalColor
	Link      lipgloss.TerminalColor
}

// Styles groups the styles used by Tree.
type Styles struct {
	Tag       lipgloss.Style
	Component lipgloss.Style
	Slot      lipgloss.Style
	PropKey   lipgloss.Style
	PropValue lipgloss.Style
	Text      lipgloss.Style
	Comment   lipgloss.Style
	Raw       lipgloss.Style
	Link      lipgloss.Style
}

// Theme provides named styles for the tree view.
type Theme interface {
	Name() string
	Styles(r *lipgloss.Renderer) Styles
}

type theme struct {
	name    string
	palette Palette
}

func (t theme) Name() string { return t.name }

func (t theme) Styles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	p := t.palette
	color := func(c lipgloss.TerminalColor) lipgloss.Style {
		s := r.NewStyle()
		if c != nil {
			s = s.Foreground(c)
		}
		return s
	}
	return Styles{
		Tag:       color(p.Tag).Bold(true),
		Component: color(p.Component).Bold(true).Italic(true),
		Slot:      color(p.Slot),
		PropKey:   color(p.PropKey),
		PropValue: color(p.PropValue),
		Text:      color(p.Text),
		Comment:   color(p.Comment).Faint(true),
		Raw:       color(p.Raw),
		Link:      color(p.Link).Underline(true),
	}
}

// NewTheme returns a Theme from a palette.
func NewTheme(name string, p Palette) Theme {
	return theme{name: name, palette: p}
}

func hex(h string) lipgloss.TerminalColor { return lipgloss.Color(h) }

var builtinThemes = map[string]Theme{
	"default": theme{name: "default", palette: Palette{
		Tag: lipgloss.ANSIColor(4), Component: lipgloss.ANSIColor(5), Slot: lipgloss.ANSIColor(3),
		PropKey: lipgloss.ANSIColor(6), PropValue: lipgloss.ANSIColor(2), Comment: lipgloss.ANSIColor(8),
		Raw: lipgloss.ANSIColor(1), Link: lipgloss.ANSIColor(4),
	}},
	"boring": theme{name: "boring"},
	"dracula": theme{name: "dracula", palette: Palette{
		Tag: hex("#bd93f9"), Component: hex("#ff79c6"), Slot: hex("#f1fa8c"), PropKey: hex("#8be9fd"),
		PropValue: hex("#50fa7b"), Text: hex("#f8f8f2"), Comment: hex("#6272a4"), Raw: hex("#ff5555"), Link: hex("#8be9fd"),
	}},
	"nord": theme{name: "nord", palette: Palette{
		Tag: hex("#81a1c1"), Component: hex("#b48ead"), Slot: hex("#ebcb8b"), PropKey: hex("#88c0d0"),
		PropValue: hex("#a3be8c"), Text: hex("#d8dee9"), Comment: hex("#4c566a"), Raw: hex("#bf616a"), Link: hex("#5e81ac"),
	}},
	"gruvbox": theme{name: "gruvbox", palette: Palette{
		Tag: hex("#83a598"), Component: hex("#d3869b"), Slot: hex("#fabd2f"), PropKey: hex("#8ec07c"),
		PropValue: hex("#b8bb26"), Text: hex("#ebdbb2"), Comment: hex("#928374"), Raw: hex("#fb4934"), Link: hex("#83a598"),
	}},
	"tokyo-night": theme{name: "tokyo-night", palette: Palette{
		Tag: hex("#7aa2f7"), Component: hex("#bb9af7"), Slot: hex("#e0af68"), PropKey: hex("#7dcfff"),
		PropValue: hex("#9ece6a"), Text: hex("#c0caf5"), Comment: hex("#565f89"), Raw: hex("#f7768e"), Link: hex("#2ac3de"),
	}},
	"solarized-dark": theme{name: "solarized-dark", palette: Palette{
		Tag: hex("#268bd2"), Component: hex("#d33682"), Slot: hex("#b58900"), PropKey: hex("#2aa198"),
		PropValue: hex("#859900"), Text: hex("#839496"), Comment: hex("#586e75"), Raw: hex("#dc322f"), Link: hex("#6c71c4"),
	}},
	"github-light": theme{name: "github-light", palette: Palette{
		Tag: hex("#0550ae"), Component: hex("#8250df"), Slot: hex("#953800"), PropKey: hex("#0a3069"),
		PropValue: hex("#116329"), Text: hex("#24292f"), Comment: hex("#6e7781"), Raw: hex("#cf222e"), Link: hex("#0969da"),
	}},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name. The empty name is the
// default theme.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	t, ok := builtinThemes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}
