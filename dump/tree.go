package dump

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"pkt.systems/mdtree"
)

const (
	osc8Start = "\x1b]8;;"
	osc8End   = "\x1b]8;;\x1b\\"

	indentWidth = 2
	// minTextWidth keeps deeply nested text readable when Width is small.
	minTextWidth = 20
)

// urlProps are the properties rendered as hyperlinks.
var urlProps = map[string]bool{"href": true, "src": true, "url": true}

// TreeOptions configures Tree.
type TreeOptions struct {
	Theme Theme
	// Width wraps text at the given column. Zero disables wrapping.
	Width int
	// OSC8 renders link properties as terminal hyperlinks.
	OSC8 bool
	// Renderer decides the colour profile. Nil detects it from the writer.
	Renderer *lipgloss.Renderer
}

// Tree writes an indented, styled outline of el to w.
func Tree(w io.Writer, el *mdtree.Element, opts TreeOptions) error {
	if opts.Theme == nil {
		opts.Theme = DefaultTheme()
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.NewRenderer(w)
	}
	bw := bufio.NewWriter(w)
	t := treeWriter{w: bw, opts: opts, st: opts.Theme.Styles(opts.Renderer)}
	t.walk(el)
	if t.err != nil {
		return t.err
	}
	return bw.Flush()
}

// TreeString returns the outline of el as a string.
func TreeString(el *mdtree.Element, opts TreeOptions) string {
	var b strings.Builder
	_ = Tree(&b, el, opts)
	return b.String()
}

type treeWriter struct {
	w    *bufio.Writer
	opts TreeOptions
	st   Styles
	err  error
}

type treeItem struct {
	el    *mdtree.Element
	depth int
	// slot is set for slot headings; el is nil then.
	slot string
}

func (t *treeWriter) walk(root *mdtree.Element) {
	if root == nil {
		return
	}
	stack := []treeItem{{el: root}}
	for len(stack) > 0 && t.err == nil {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.el == nil {
			t.line(it.depth, t.st.Slot.Render("#"+it.slot))
			continue
		}
		t.element(it.el, it.depth)

		names := mdtree.SlotNames(it.el)
		for i := len(names) - 1; i >= 0; i-- {
			content := it.el.Slots[names[i]]
			for j := len(content) - 1; j >= 0; j-- {
				stack = append(stack, treeItem{el: content[j], depth: it.depth + 2})
			}
			stack = append(stack, treeItem{depth: it.depth + 1, slot: names[i]})
		}
		for j := len(it.el.Children) - 1; j >= 0; j-- {
			stack = append(stack, treeItem{el: it.el.Children[j], depth: it.depth + 1})
		}
	}
}

func (t *treeWriter) element(el *mdtree.Element, depth int) {
	switch el.Kind {
	case mdtree.KindText:
		t.block(depth, strconv.Quote(el.Text), t.st.Text)
	case mdtree.KindComment:
		t.block(depth, "<!-- "+el.Text+" -->", t.st.Comment)
	case mdtree.KindRaw:
		t.block(depth, "raw "+strconv.Quote(el.Text), t.st.Raw)
	default:
		var b strings.Builder
		b.WriteString("<")
		if el.Component != nil {
			b.WriteString(t.st.Component.Render(el.Tag))
		} else {
			b.WriteString(t.st.Tag.Render(el.Tag))
		}
		for _, k := range sortedKeys(el.Props) {
			b.WriteByte(' ')
			b.WriteString(t.st.PropKey.Render(k))
			b.WriteByte('=')
			b.WriteString(t.propValue(k, el.Props[k], depth))
		}
		b.WriteString(">")
		t.line(depth, b.String())
	}
}

func (t *treeWriter) propValue(key string, v any, depth int) string {
	s := formatValue(v)
	if str, ok := v.(string); ok && urlProps[key] && str != "" {
		display := str
		if t.opts.Width > 0 {
			display = fitURL(str, t.textWidth(depth)/2)
		}
		display = t.st.Link.Render(display)
		if t.opts.OSC8 {
			display = osc8Start + str + "\x1b\\" + display + osc8End
		}
		return display
	}
	return t.st.PropValue.Render(s)
}

// block writes possibly multi-line text wrapped to the available width.
func (t *treeWriter) block(depth int, text string, style lipgloss.Style) {
	if t.opts.Width > 0 {
		text = wordwrap.String(text, t.textWidth(depth))
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	t.write(indent.String(strings.Join(lines, "\n"), uint(depth*indentWidth)) + "\n")
}

func (t *treeWriter) line(depth int, s string) {
	t.write(strings.Repeat(" ", depth*indentWidth) + s + "\n")
}

func (t *treeWriter) write(s string) {
	if t.err != nil {
		return
	}
	_, t.err = t.w.WriteString(s)
}

func (t *treeWriter) textWidth(depth int) int {
	w := t.opts.Width - depth*indentWidth
	if w < minTextWidth {
		return minTextWidth
	}
	return w
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case nil:
		return "null"
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func truncateWithEllipsis(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	if limit == 1 {
		return "…"
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

// fitURL shortens url to limit columns, dropping the scheme first.
func fitURL(url string, limit int) string {
	if ansi.PrintableRuneWidth(url) <= limit {
		return url
	}
	if idx := strings.Index(url, "://"); idx != -1 {
		trimmed := url[idx+3:]
		if ansi.PrintableRuneWidth(trimmed) <= limit {
			return trimmed
		}
	}
	return truncateWithEllipsis(url, limit)
}

// DetectOSC8Support reports whether the terminal likely supports OSC 8
// hyperlinks. OSC8=0 disables them.
func DetectOSC8Support() bool {
	if os.Getenv("OSC8") == "0" {
		return false
	}
	if os.Getenv("DOMTERM") != "" || os.Getenv("WT_SESSION") != "" {
		return true
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "vscode", "ghostty":
		return true
	}
	if strings.Contains(strings.ToLower(os.Getenv("TERM")), "kitty") {
		return true
	}
	if vte := os.Getenv("VTE_VERSION"); vte != "" {
		if n, err := strconv.Atoi(vte); err == nil && n >= 5000 {
			return true
		}
	}
	return false
}

func sortedKeys(p mdtree.Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
