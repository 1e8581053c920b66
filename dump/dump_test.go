package dump

import (
	"io"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/mdtree"
)

func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func sampleTree(t *testing.T) *mdtree.Element {
	t.Helper()
	doc := &mdtree.Node{Type: mdtree.NodeRoot, Children: []*mdtree.Node{
		{Type: mdtree.NodeHeading, Depth: 1, Data: &mdtree.Data{HProperties: mdtree.Props{"id": "x"}},
			Children: []*mdtree.Node{{Type: mdtree.NodeText, Value: "Hello"}}},
		{Type: mdtree.NodeBlockquote, Children: []*mdtree.Node{
			{Type: mdtree.NodeParagraph, Children: []*mdtree.Node{{Type: mdtree.NodeText, Value: "body"}}},
		}},
		{Type: "x"},
	}}
	el, err := mdtree.Render(doc, mdtree.WithOverride(mdtree.NodeBlockquote,
		mdtree.UseProps(mdtree.Named("Callout"), mdtree.Props{"tone": "info"})))
	require.NoError(t, err)
	return el
}

func TestTreeOutline(t *testing.T) {
	out := TreeString(sampleTree(t), TreeOptions{Renderer: plainRenderer()})
	want := strings.Join([]string{
		`<div>`,
		`  <h1 id="x">`,
		`    "Hello"`,
		`  <Callout tone="info">`,
		`    #default`,
		`      <p>`,
		`        "body"`,
		`  <!-- {"type":"x"} -->`,
		``,
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTreeWrapsLongText(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 20)
	el := &mdtree.Element{Kind: mdtree.KindText, Text: long}
	out := TreeString(el, TreeOptions{Width: 30, Renderer: plainRenderer()})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.PrintableRuneWidth(l), 30, l)
	}
}

func TestTreeLinks(t *testing.T) {
	el := &mdtree.Element{Kind: mdtree.KindElement, Tag: "a", Props: mdtree.Props{"href": "https://example.com/a/very/long/path/to/something"}}
	out := TreeString(el, TreeOptions{OSC8: true, Renderer: plainRenderer()})
	assert.Contains(t, out, osc8Start+"https://example.com/a/very/long/path/to/something\x1b\\")
	assert.Contains(t, out, osc8End)

	out = TreeString(el, TreeOptions{Width: 40, Renderer: plainRenderer()})
	assert.NotContains(t, out, "https://")
	assert.Contains(t, out, "…")
}

func TestFitURL(t *testing.T) {
	assert.Equal(t, "https://a.io", fitURL("https://a.io", 20))
	assert.Equal(t, "a.io/x", fitURL("https://a.io/x", 8))
	assert.Equal(t, "abcd…", fitURL("abcdefghij", 5))
	assert.Equal(t, "…", truncateWithEllipsis("abc", 1))
	assert.Equal(t, "", truncateWithEllipsis("abc", 0))
}

func TestThemes(t *testing.T) {
	for _, name := range []string{"default", "boring", "dracula", "nord", "gruvbox"} {
		th, ok := ThemeByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, th.Name())
	}
	_, ok := ThemeByName("Nope")
	assert.False(t, ok)
	def, ok := ThemeByName("")
	require.True(t, ok)
	assert.Equal(t, DefaultTheme().Name(), def.Name())
	assert.Contains(t, AvailableThemes(), "tokyo-night")
	assert.IsIncreasing(t, AvailableThemes())
}

func TestDetectOSC8Support(t *testing.T) {
	t.Setenv("OSC8", "0")
	t.Setenv("WT_SESSION", "1")
	assert.False(t, DetectOSC8Support())
	t.Setenv("OSC8", "")
	assert.True(t, DetectOSC8Support())
}

func TestXML(t *testing.T) {
	s, err := XMLString(sampleTree(t), 2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s))
	callout := doc.FindElement("//Callout")
	require.NotNil(t, callout)
	assert.Equal(t, "true", callout.SelectAttrValue("component", ""))
	assert.Equal(t, "info", callout.SelectAttrValue("tone", ""))
	p := doc.FindElement("//Callout/slot[@name='default']/p")
	require.NotNil(t, p)
	assert.Equal(t, "body", p.Text())
	assert.Equal(t, "x", doc.FindElement("//h1").SelectAttrValue("id", ""))
}

func TestXMLNames(t *testing.T) {
	assert.Equal(t, "my_comp", xmlName("my comp"))
	assert.Equal(t, "_1a", xmlName("11a"))
	assert.Equal(t, "_", xmlName(""))
	assert.Equal(t, "x-card.v2", xmlName("x-card.v2"))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(sampleTree(t))
	b := Fingerprint(sampleTree(t))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	el := sampleTree(t)
	el.Children[0].Children[0].Text = "Hello!"
	assert.NotEqual(t, a, Fingerprint(el))

	flat := &mdtree.Element{Tag: "x", Children: []*mdtree.Element{{Kind: mdtree.KindText, Text: "a"}}}
	slotted := &mdtree.Element{Tag: "x", Slots: map[string][]*mdtree.Element{mdtree.DefaultSlot: {{Kind: mdtree.KindText, Text: "a"}}}}
	assert.NotEqual(t, Fingerprint(flat), Fingerprint(slotted))
}
