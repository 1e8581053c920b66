package source

import (
	"bytes"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"pkt.systems/mdtree"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// FromMarkdown parses CommonMark with the GitHub extensions (tables, task
// lists, strikethrough, autolinks) into an mdast document tree. Leading front
// matter becomes a yaml node; TOML and JSON front matter are converted to
// YAML. Block nodes carry source positions.
func FromMarkdown(src []byte) (*mdtree.Node, error) {
	if err := ValidateInput(src); err != nil {
		return nil, err
	}
	fm, body := SplitFrontMatter(src)
	c := converter{
		src:    body,
		base:   len(src) - len(body),
		starts: lineStarts(src),
	}
	doc := markdown.Parser().Parse(text.NewReader(body))
	root := &mdtree.Node{
		Type:     mdtree.NodeRoot,
		Children: c.children(doc),
		Position: &mdtree.Position{Start: c.point(0), End: c.point(len(src))},
	}
	if fm != nil {
		value, err := fm.YAML()
		if err != nil {
			return nil, err
		}
		end := fm.End
		if end > 0 && src[end-1] == '\n' {
			end--
		}
		yamlNode := &mdtree.Node{
			Type:     mdtree.NodeYAML,
			Value:    value,
			Position: &mdtree.Position{Start: c.point(0), End: c.point(end)},
		}
		root.Children = append([]*mdtree.Node{yamlNode}, root.Children...)
	}
	return root, nil
}

type converter struct {
	src []byte
	// base is the offset of src within the full input.
	base   int
	starts []int
}

func (c *converter) children(parent ast.Node) []*mdtree.Node {
	var out []*mdtree.Node
	for ch := parent.FirstChild(); ch != nil; ch = ch.NextSibling() {
		for _, n := range c.node(ch) {
			out = appendMerged(out, n)
		}
	}
	return out
}

// appendMerged joins adjacent text nodes the way mdast does.
func appendMerged(out []*mdtree.Node, n *mdtree.Node) []*mdtree.Node {
	if n.Type == mdtree.NodeText && len(out) > 0 {
		if last := out[len(out)-1]; last.Type == mdtree.NodeText {
			last.Value += n.Value
			return out
		}
	}
	return append(out, n)
}

func (c *converter) node(n ast.Node) []*mdtree.Node {
	var out *mdtree.Node
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		out = c.block(n, mdtree.NodeParagraph)
	case *ast.Heading:
		out = c.block(n, mdtree.NodeHeading)
		out.Depth = n.Level
	case *ast.ThematicBreak:
		out = c.block(n, mdtree.NodeThematicBreak)
	case *ast.FencedCodeBlock:
		out = c.block(n, mdtree.NodeCode)
		out.Value = c.lines(n.Lines())
		if n.Info != nil {
			info := strings.TrimSpace(string(n.Info.Segment.Value(c.src)))
			out.Lang = string(n.Language(c.src))
			out.Meta = strings.TrimSpace(strings.TrimPrefix(info, out.Lang))
		}
	case *ast.CodeBlock:
		out = c.block(n, mdtree.NodeCode)
		out.Value = c.lines(n.Lines())
	case *ast.Blockquote:
		out = c.block(n, mdtree.NodeBlockquote)
	case *ast.List:
		out = c.block(n, mdtree.NodeList)
		out.Ordered = n.IsOrdered()
		out.Spread = !n.IsTight
		if out.Ordered {
			start := n.Start
			out.Start = &start
		}
	case *ast.ListItem:
		out = c.block(n, mdtree.NodeListItem)
		if list, ok := n.Parent().(*ast.List); ok {
			out.Spread = !list.IsTight
		}
		if p := n.FirstChild(); p != nil {
			if box, ok := p.FirstChild().(*east.TaskCheckBox); ok {
				checked := box.IsChecked
				out.Checked = &checked
			}
		}
	case *ast.HTMLBlock:
		out = c.block(n, mdtree.NodeHTML)
		value := c.lines(n.Lines())
		if n.HasClosure() {
			value = strings.TrimSuffix(value+"\n"+string(n.ClosureLine.Value(c.src)), "\n")
		}
		out.Value = value
	case *ast.Text:
		v := n.Segment.Value(c.src)
		if !n.IsRaw() {
			v = unescape(v)
		}
		value := string(v)
		if n.SoftLineBreak() {
			value += "\n"
		}
		nodes := []*mdtree.Node{{Type: mdtree.NodeText, Value: value}}
		if n.HardLineBreak() {
			nodes = append(nodes, &mdtree.Node{Type: mdtree.NodeBreak})
		}
		return nodes
	case *ast.String:
		out = &mdtree.Node{Type: mdtree.NodeText, Value: string(n.Value)}
	case *ast.CodeSpan:
		var b strings.Builder
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if t, ok := ch.(*ast.Text); ok {
				b.Write(t.Segment.Value(c.src))
			}
		}
		out = &mdtree.Node{Type: mdtree.NodeInlineCode, Value: strings.ReplaceAll(b.String(), "\n", " ")}
		return []*mdtree.Node{out}
	case *ast.Emphasis:
		out = &mdtree.Node{Type: mdtree.NodeEmphasis}
		if n.Level >= 2 {
			out.Type = mdtree.NodeStrong
		}
	case *ast.Link:
		out = &mdtree.Node{
			Type:  mdtree.NodeLink,
			URL:   string(unescape(n.Destination)),
			Title: string(unescape(n.Title)),
		}
	case *ast.Image:
		out = &mdtree.Node{
			Type:  mdtree.NodeImage,
			URL:   string(unescape(n.Destination)),
			Title: string(unescape(n.Title)),
			Alt:   c.plainText(n),
		}
		return []*mdtree.Node{out}
	case *ast.AutoLink:
		url := string(n.URL(c.src))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		out = &mdtree.Node{
			Type:     mdtree.NodeLink,
			URL:      url,
			Children: []*mdtree.Node{{Type: mdtree.NodeText, Value: string(n.Label(c.src))}},
		}
		return []*mdtree.Node{out}
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(c.src))
		}
		return []*mdtree.Node{{Type: mdtree.NodeHTML, Value: b.String()}}
	case *east.Strikethrough:
		out = &mdtree.Node{Type: mdtree.NodeDelete}
	case *east.Table:
		out = c.block(n, mdtree.NodeTable)
		out.Align = make([]mdtree.Align, len(n.Alignments))
		for i, a := range n.Alignments {
			out.Align[i] = convertAlign(a)
		}
	case *east.TableHeader, *east.TableRow:
		out = c.block(n, mdtree.NodeTableRow)
	case *east.TableCell:
		out = c.block(n, mdtree.NodeTableCell)
	case *east.TaskCheckBox:
		return nil
	default:
		out = &mdtree.Node{Type: mdtree.NodeType(lowerFirst(n.Kind().String()))}
		if n.Type() != ast.TypeInline {
			out.Position = c.position(n)
		}
	}
	out.Children = c.children(n)
	return []*mdtree.Node{out}
}

func (c *converter) block(n ast.Node, t mdtree.NodeType) *mdtree.Node {
	return &mdtree.Node{Type: t, Position: c.position(n)}
}

func (c *converter) lines(segs *text.Segments) string {
	var b bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// plainText collects the text content below n, used for image alt text.
func (c *converter) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			b.Write(unescape(t.Segment.Value(c.src)))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (c *converter) position(n ast.Node) *mdtree.Position {
	start, stop, ok := c.span(n)
	if !ok {
		return nil
	}
	for stop > start && c.src[stop-1] == '\n' {
		stop--
	}
	return &mdtree.Position{Start: c.point(c.base + start), End: c.point(c.base + stop)}
}

// span returns the source range covered by the block n, taken from its own
// lines or from its first and last descendants with lines. The start is moved
// back over the marker that opens n, so a container always covers its
// children.
func (c *converter) span(n ast.Node) (int, int, bool) {
	if n.Type() == ast.TypeInline {
		return 0, 0, false
	}
	if l := n.Lines(); l != nil && l.Len() > 0 {
		return c.blockStart(n, l.At(0).Start), l.At(l.Len() - 1).Stop, true
	}
	start, stop, found := 0, 0, false
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		s, e, ok := c.span(ch)
		if !ok {
			continue
		}
		if !found {
			start = s
			found = true
		}
		stop = e
	}
	if !found {
		return 0, 0, false
	}
	return c.blockStart(n, start), stop, true
}

// blockStart maps the offset where the content of n begins to the offset of
// the marker opening n on the same line: list bullets and numbers, quote
// markers, ATX hashes, table pipes and code fences. Offsets are relative to
// the markdown body.
func (c *converter) blockStart(n ast.Node, s int) int {
	ls := c.bodyLineStart(s)
	back := func(pos int, match func(byte) bool) int {
		for pos > ls && match(c.src[pos-1]) {
			pos--
		}
		return pos
	}
	p := back(s, isBlank)
	switch n := n.(type) {
	case *ast.ListItem:
		if p > ls && strings.IndexByte("-*+", c.src[p-1]) >= 0 {
			return p - 1
		}
		if p > ls && (c.src[p-1] == '.' || c.src[p-1] == ')') {
			if d := back(p-1, isDigit); d < p-1 {
				return d
			}
		}
	case *ast.Blockquote:
		if p > ls && c.src[p-1] == '>' {
			return p - 1
		}
	case *ast.Heading:
		if h := back(p, func(b byte) bool { return b == '#' }); h < p {
			return h
		}
	case *east.Table, *east.TableHeader, *east.TableRow:
		if p > ls && c.src[p-1] == '|' {
			return p - 1
		}
	case *ast.FencedCodeBlock:
		return c.fenceStart(n, s)
	}
	return s
}

// fenceStart finds the opening fence of a fenced code block whose first
// content line starts at s.
func (c *converter) fenceStart(n *ast.FencedCodeBlock, s int) int {
	if n.Info != nil {
		info := n.Info.Segment.Start
		ls := c.bodyLineStart(info)
		p := info
		for p > ls && (isBlank(c.src[p-1]) || isFence(c.src[p-1])) {
			p--
		}
		for p < info && !isFence(c.src[p]) {
			p++
		}
		return p
	}
	ls := c.bodyLineStart(s)
	if ls == 0 {
		return s
	}
	prev := c.bodyLineStart(ls - 1)
	for p := prev; p < ls; p++ {
		if isFence(c.src[p]) {
			return p
		}
	}
	return s
}

// bodyLineStart returns the start of the body line containing off.
func (c *converter) bodyLineStart(off int) int {
	ls := c.lineStart(c.base+off) - c.base
	if ls < 0 {
		return 0
	}
	return ls
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isFence(b byte) bool { return b == '`' || b == '~' }

func (c *converter) point(off int) mdtree.Point {
	line := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > off })
	o := off
	return mdtree.Point{Line: line, Column: off - c.starts[line-1] + 1, Offset: &o}
}

func (c *converter) lineStart(off int) int {
	line := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > off })
	return c.starts[line-1]
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func unescape(v []byte) []byte {
	if len(v) == 0 {
		return v
	}
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}

func convertAlign(a east.Alignment) mdtree.Align {
	switch a {
	case east.AlignLeft:
		return mdtree.AlignLeft
	case east.AlignRight:
		return mdtree.AlignRight
	case east.AlignCenter:
		return mdtree.AlignCenter
	default:
		return mdtree.AlignNone
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
