package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/mdtree"
)

func parseMarkdown(t *testing.T, src string) *mdtree.Node {
	t.Helper()
	root, err := FromMarkdown([]byte(src))
	require.NoError(t, err)
	require.Equal(t, mdtree.NodeRoot, root.Type)
	return root
}

func types(nodes []*mdtree.Node) []mdtree.NodeType {
	out := make([]mdtree.NodeType, len(nodes))
	for i, n := range nodes {
		out[i] = n.Type
	}
	return out
}

func TestFromMarkdownInlineStructure(t *testing.T) {
	root := parseMarkdown(t, "# Hello\n\nSome *em* and **strong** and ~~del~~.\n")
	require.Len(t, root.Children, 2)

	h := root.Children[0]
	assert.Equal(t, mdtree.NodeHeading, h.Type)
	assert.Equal(t, 1, h.Depth)
	assert.Equal(t, "Hello", h.Children[0].Value)

	p := root.Children[1]
	assert.Equal(t, []mdtree.NodeType{
		mdtree.NodeText, mdtree.NodeEmphasis, mdtree.NodeText, mdtree.NodeStrong,
		mdtree.NodeText, mdtree.NodeDelete, mdtree.NodeText,
	}, types(p.Children))
	assert.Equal(t, "Some ", p.Children[0].Value)
	assert.Equal(t, "del", p.Children[5].Children[0].Value)
}

func TestFromMarkdownTextMergingAndBreaks(t *testing.T) {
	root := parseMarkdown(t, "AT&amp;T \\*x\\*\nnext  \nlast\n")
	p := root.Children[0]
	require.Equal(t, []mdtree.NodeType{mdtree.NodeText, mdtree.NodeBreak, mdtree.NodeText}, types(p.Children))
	assert.Equal(t, "AT&T *x*\nnext", p.Children[0].Value)
	assert.Equal(t, "last", p.Children[2].Value)
}

func TestFromMarkdownLists(t *testing.T) {
	root := parseMarkdown(t, "- [x] done\n- [ ] todo\n- plain\n\n3. a\n4. b\n")
	require.Len(t, root.Children, 2)

	tasks := root.Children[0]
	assert.False(t, tasks.Ordered)
	assert.False(t, tasks.Spread)
	assert.Nil(t, tasks.Start)
	require.Len(t, tasks.Children, 3)
	require.NotNil(t, tasks.Children[0].Checked)
	assert.True(t, *tasks.Children[0].Checked)
	require.NotNil(t, tasks.Children[1].Checked)
	assert.False(t, *tasks.Children[1].Checked)
	assert.Nil(t, tasks.Children[2].Checked)

	para := tasks.Children[0].Children[0]
	assert.Equal(t, mdtree.NodeParagraph, para.Type)
	assert.Equal(t, "done", strings.TrimSpace(para.Children[0].Value))

	ordered := root.Children[1]
	assert.True(t, ordered.Ordered)
	require.NotNil(t, ordered.Start)
	assert.Equal(t, 3, *ordered.Start)
}

func TestFromMarkdownTable(t *testing.T) {
	root := parseMarkdown(t, "| a | b | c |\n|:--|--:|---|\n| 1 | 2 | 3 |\n")
	table := root.Children[0]
	require.Equal(t, mdtree.NodeTable, table.Type)
	assert.Equal(t, []mdtree.Align{mdtree.AlignLeft, mdtree.AlignRight, mdtree.AlignNone}, table.Align)
	require.Len(t, table.Children, 2)

	header := table.Children[0]
	assert.Equal(t, mdtree.NodeTableRow, header.Type)
	require.NotNil(t, header.Position)
	require.NotNil(t, header.Position.Start.Offset)
	assert.Equal(t, 0, *header.Position.Start.Offset)
	assert.Equal(t, "b", header.Children[1].Children[0].Value)

	body := table.Children[1]
	assert.Equal(t, 3, body.Position.Start.Line)
	assert.Equal(t, 1, body.Position.Start.Column)
	assert.NotEqual(t, 0, *body.Position.Start.Offset)
}

func TestFromMarkdownBlockPositionsStartAtMarkers(t *testing.T) {
	src := "- one\n- > two\n\n10. ten\n\n## Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n> ```go\n> x\n> ```\n"
	root := parseMarkdown(t, src)
	require.Len(t, root.Children, 5)

	start := func(n *mdtree.Node) (int, int) {
		t.Helper()
		require.NotNil(t, n.Position, "%s has no position", n.Type)
		require.NotNil(t, n.Position.Start.Offset)
		return *n.Position.Start.Offset, n.Position.Start.Column
	}
	contains := func(outer, inner *mdtree.Node) {
		t.Helper()
		o, _ := start(outer)
		i, _ := start(inner)
		assert.LessOrEqual(t, o, i, "%s starts after its child %s", outer.Type, inner.Type)
		assert.GreaterOrEqual(t, *outer.Position.End.Offset, *inner.Position.End.Offset)
	}

	list := root.Children[0]
	first, second := list.Children[0], list.Children[1]
	off, col := start(first)
	assert.Equal(t, 0, off)
	assert.Equal(t, 1, col)
	off, col = start(second)
	assert.Equal(t, strings.Index(src, "- > two"), off)
	assert.Equal(t, 1, col)
	quote := second.Children[0]
	_, col = start(quote)
	assert.Equal(t, 3, col)
	contains(list, first)
	contains(second, quote)
	contains(quote, quote.Children[0])

	ordered := root.Children[1]
	off, _ = start(ordered.Children[0])
	assert.Equal(t, strings.Index(src, "10."), off)

	heading := root.Children[2]
	off, _ = start(heading)
	assert.Equal(t, strings.Index(src, "## Title"), off)

	table := root.Children[3]
	require.Equal(t, mdtree.NodeTable, table.Type)
	off, col = start(table)
	assert.Equal(t, strings.Index(src, "| a"), off)
	assert.Equal(t, 1, col)
	contains(table, table.Children[0])
	contains(table.Children[0], table.Children[0].Children[0])
	rowOff, _ := start(table.Children[0])
	assert.Equal(t, off, rowOff)

	code := root.Children[4].Children[0]
	require.Equal(t, mdtree.NodeCode, code.Type)
	off, col = start(code)
	assert.Equal(t, strings.Index(src, "```go"), off)
	assert.Equal(t, 3, col)
}

func TestFromMarkdownCodeAndHTML(t *testing.T) {
	root := parseMarkdown(t, "```go title=x\nfmt.Println()\n```\n\n    indented\n\n<div>\nhi\n</div>\n")
	require.Len(t, root.Children, 3)

	fenced := root.Children[0]
	assert.Equal(t, mdtree.NodeCode, fenced.Type)
	assert.Equal(t, "go", fenced.Lang)
	assert.Equal(t, "title=x", fenced.Meta)
	assert.Equal(t, "fmt.Println()", fenced.Value)

	indented := root.Children[1]
	assert.Equal(t, mdtree.NodeCode, indented.Type)
	assert.Empty(t, indented.Lang)
	assert.Equal(t, "indented", indented.Value)

	html := root.Children[2]
	assert.Equal(t, mdtree.NodeHTML, html.Type)
	assert.Contains(t, html.Value, "<div>")
	assert.Contains(t, html.Value, "</div>")
}

func TestFromMarkdownLinksAndImages(t *testing.T) {
	root := parseMarkdown(t, "[x](/a \"T\") ![alt *t*](i.png) <https://example.com> `c` <b>raw</b>\n")
	p := root.Children[0]
	var link, img, auto, code *mdtree.Node
	var raw []*mdtree.Node
	for _, n := range p.Children {
		switch {
		case n.Type == mdtree.NodeLink && link == nil:
			link = n
		case n.Type == mdtree.NodeLink:
			auto = n
		case n.Type == mdtree.NodeImage:
			img = n
		case n.Type == mdtree.NodeInlineCode:
			code = n
		case n.Type == mdtree.NodeHTML:
			raw = append(raw, n)
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, "/a", link.URL)
	assert.Equal(t, "T", link.Title)
	require.NotNil(t, img)
	assert.Equal(t, "i.png", img.URL)
	assert.Equal(t, "alt t", img.Alt)
	assert.Empty(t, img.Children)
	require.NotNil(t, auto)
	assert.Equal(t, "https://example.com", auto.URL)
	require.NotNil(t, code)
	assert.Equal(t, "c", code.Value)
	require.Len(t, raw, 2)
	assert.Equal(t, "<b>", raw[0].Value)
}

func TestFromMarkdownFrontMatterBecomesYAMLNode(t *testing.T) {
	root := parseMarkdown(t, "+++\ntitle = \"Post\"\n+++\n# Hi\n")
	require.Len(t, root.Children, 2)
	y := root.Children[0]
	assert.Equal(t, mdtree.NodeYAML, y.Type)
	assert.Equal(t, "title: Post", y.Value)
	assert.Equal(t, 0, *y.Position.Start.Offset)
	assert.Equal(t, 3, y.Position.End.Line)

	h := root.Children[1]
	assert.Equal(t, 4, h.Position.Start.Line)
}

func TestFromMarkdownRendersEndToEnd(t *testing.T) {
	root := parseMarkdown(t, "| h |\n|---|\n| v |\n")
	el, err := mdtree.Render(root, mdtree.WithHeaderCells(mdtree.HeaderOffsetZero))
	require.NoError(t, err)
	table := el.Children[0]
	assert.Equal(t, "th", table.Children[0].Children[0].Tag)
	assert.Equal(t, "td", table.Children[1].Children[0].Tag)
}

func TestFromMarkdownRejectsBinary(t *testing.T) {
	_, err := FromMarkdown([]byte{'a', 0, 'b'})
	assert.ErrorIs(t, err, ErrBinaryInput)
}
