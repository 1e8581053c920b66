package mdtree

import "encoding/json"

// NodeType names the kind of a document tree node. Values follow mdast.
type NodeType string

const (
	NodeRoot          NodeType = "root"
	NodeParagraph     NodeType = "paragraph"
	NodeHeading       NodeType = "heading"
	NodeEmphasis      NodeType = "emphasis"
	NodeStrong        NodeType = "strong"
	NodeDelete        NodeType = "delete"
	NodeBlockquote    NodeType = "blockquote"
	NodeList          NodeType = "list"
	NodeListItem      NodeType = "listItem"
	NodeTable         NodeType = "table"
	NodeTableRow      NodeType = "tableRow"
	NodeTableCell     NodeType = "tableCell"
	NodeLink          NodeType = "link"
	NodeImage         NodeType = "image"
	NodeInlineCode    NodeType = "inlineCode"
	NodeCode          NodeType = "code"
	NodeHTML          NodeType = "html"
	NodeBreak         NodeType = "break"
	NodeThematicBreak NodeType = "thematicBreak"
	NodeYAML          NodeType = "yaml"
	NodeText          NodeType = "text"
)

var knownNodeTypes = [...]NodeType{
	NodeRoot,
	NodeParagraph,
	NodeHeading,
	NodeEmphasis,
	NodeStrong,
	NodeDelete,
	NodeBlockquote,
	NodeList,
	NodeListItem,
	NodeTable,
	NodeTableRow,
	NodeTableCell,
	NodeLink,
	NodeImage,
	NodeInlineCode,
	NodeCode,
	NodeHTML,
	NodeBreak,
	NodeThematicBreak,
	NodeYAML,
	NodeText,
}

// KnownNodeTypes returns the node types that have a default rendering rule.
func KnownNodeTypes() []NodeType {
	out := make([]NodeType, len(knownNodeTypes))
	copy(out, knownNodeTypes[:])
	return out
}

// Known reports whether t has a default rendering rule.
func (t NodeType) Known() bool {
	for _, k := range knownNodeTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Align is a table column alignment. AlignNone mirrors a null entry in mdast.
type Align string

const (
	AlignNone   Align = ""
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Point is a place in the source document.
type Point struct {
	Line   int  `json:"line"`
	Column int  `json:"column"`
	Offset *int `json:"offset,omitempty"`
}

// Position spans a node in the source document.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Data holds out-of-band node information. VueProps and then HProperties
// are merged into the properties of whatever element the node renders to.
type Data struct {
	HProperties Props `json:"hProperties,omitempty"`
	VueProps    Props `json:"vueProps,omitempty"`

	// Extra keeps data fields without a typed counterpart, e.g. hName.
	Extra map[string]json.RawMessage `json:"-"`
}

// Node is one node of the input document tree. Which fields are meaningful
// depends on Type; the rest stay at their zero value.
type Node struct {
	Type     NodeType `json:"type"`
	Children []*Node  `json:"children,omitempty"`

	// Value is the literal content of text, inlineCode, code, html and yaml.
	Value string `json:"value,omitempty"`
	// Depth is the heading level, 1 to 6.
	Depth int `json:"depth,omitempty"`

	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	Alt   string `json:"alt,omitempty"`

	Lang string `json:"lang,omitempty"`
	Meta string `json:"meta,omitempty"`

	Ordered bool  `json:"ordered,omitempty"`
	Start   *int  `json:"start,omitempty"`
	Spread  bool  `json:"spread,omitempty"`
	Checked *bool `json:"checked,omitempty"`

	Align []Align `json:"align,omitempty"`

	Position *Position `json:"position,omitempty"`
	Data     *Data     `json:"data,omitempty"`

	// Extra keeps fields of the JSON form that have no typed counterpart,
	// such as identifier and label. They are written back by MarshalJSON.
	Extra map[string]json.RawMessage `json:"-"`
}

func (n *Node) hProperties() Props {
	if n == nil || n.Data == nil {
		return nil
	}
	return n.Data.HProperties
}

func (n *Node) vueProps() Props {
	if n == nil || n.Data == nil {
		return nil
	}
	return n.Data.VueProps
}
