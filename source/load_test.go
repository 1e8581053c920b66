package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/mdtree"
)

const sampleJSON = `{
  "type": "root",
  "children": [
    {"type": "heading", "depth": 2, "children": [{"type": "text", "value": "Hi"}]},
    {"type": "table", "align": ["left", null], "children": []},
    {"type": "footnoteReference", "identifier": "1"}
  ]
}`

func TestFromJSON(t *testing.T) {
	root, err := FromJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, root.Children, 3)
	assert.Equal(t, 2, root.Children[0].Depth)
	assert.Equal(t, []mdtree.Align{mdtree.AlignLeft, mdtree.AlignNone}, root.Children[1].Align)
	assert.Equal(t, mdtree.NodeType("footnoteReference"), root.Children[2].Type)
}

func TestFromJSONKeepsUnknownFieldsInPlaceholder(t *testing.T) {
	root, err := FromJSON([]byte(`{"type":"root","children":[
		{"type":"footnoteReference","identifier":"note-1","label":"Note 1","data":{"hName":"sup"}}
	]}`))
	require.NoError(t, err)
	ref := root.Children[0]
	assert.JSONEq(t, `"note-1"`, string(ref.Extra["identifier"]))
	require.NotNil(t, ref.Data)
	assert.JSONEq(t, `"sup"`, string(ref.Data.Extra["hName"]))

	el, err := mdtree.Render(root)
	require.NoError(t, err)
	ph := el.Children[0]
	require.Equal(t, mdtree.KindComment, ph.Kind)
	assert.Contains(t, ph.Text, `"type":"footnoteReference"`)
	assert.Contains(t, ph.Text, `"identifier":"note-1"`)
	assert.Contains(t, ph.Text, `"label":"Note 1"`)
	assert.Contains(t, ph.Text, `"hName":"sup"`)
}

func TestFromJSONReadsVueProps(t *testing.T) {
	root, err := FromJSON([]byte(`{"type":"paragraph","data":{"vueProps":{"class":"lead","id":"v"},"hProperties":{"id":"h"}}}`))
	require.NoError(t, err)
	el, err := mdtree.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "p", el.Tag)
	assert.Equal(t, mdtree.Props{"class": "lead", "id": "h"}, el.Props)
}

func TestFromJSONErrors(t *testing.T) {
	_, err := FromJSON([]byte(`{"children": []}`))
	assert.ErrorIs(t, err, ErrMissingType)
	_, err = FromJSON([]byte(`null`))
	assert.ErrorIs(t, err, ErrMissingType)
	_, err = FromJSON([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestLoadDetectsFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, Detect("doc.json", nil))
	assert.Equal(t, FormatMarkdown, Detect("README.md", []byte("{")))
	assert.Equal(t, FormatJSON, Detect("-", []byte("\n  {\"type\":\"root\"}")))
	assert.Equal(t, FormatMarkdown, Detect("-", []byte("# hi")))

	root, err := Load("-", []byte(sampleJSON), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, mdtree.NodeRoot, root.Type)

	root, err = Load("notes.txt", []byte("text"), FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, mdtree.NodeParagraph, root.Children[0].Type)

	_, err = Load("broken.json", []byte(`{}`), FormatAuto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "JSON": FormatJSON, "md": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("rst")
	assert.Error(t, err)
}
