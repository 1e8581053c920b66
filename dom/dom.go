// Package dom turns element trees into golang.org/x/net/html nodes and HTML
// text.
//
// Components render as elements named after the component. Their default
// slot becomes the element content; other slots are wrapped in
// <template slot="name"> children. Comment placeholders are emitted as HTML
// comments and raw elements are written verbatim.
package dom

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"pkt.systems/mdtree"
)

// Build converts el into an HTML node. A nil element yields nil.
func Build(el *mdtree.Element) *html.Node {
	if el == nil {
		return nil
	}
	switch el.Kind {
	case mdtree.KindText:
		return &html.Node{Type: html.TextNode, Data: el.Text}
	case mdtree.KindComment:
		return &html.Node{Type: html.CommentNode, Data: el.Text}
	case mdtree.KindRaw:
		return &html.Node{Type: html.RawNode, Data: el.Text}
	}
	n := &html.Node{Type: html.ElementNode, Data: el.Tag, Attr: Attributes(el.Props)}
	appendAll(n, el.Children)
	for _, name := range mdtree.SlotNames(el) {
		content := el.Slots[name]
		if name == mdtree.DefaultSlot {
			appendAll(n, content)
			continue
		}
		tpl := &html.Node{
			Type: html.ElementNode,
			Data: "template",
			Attr: []html.Attribute{{Key: "slot", Val: name}},
		}
		appendAll(tpl, content)
		n.AppendChild(tpl)
	}
	return n
}

func appendAll(parent *html.Node, els []*mdtree.Element) {
	for _, c := range els {
		if child := Build(c); child != nil {
			parent.AppendChild(child)
		}
	}
}

// Render writes el as HTML to w.
func Render(w io.Writer, el *mdtree.Element) error {
	n := Build(el)
	if n == nil {
		return nil
	}
	if err := html.Render(w, n); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// RenderString returns el as HTML text.
func RenderString(el *mdtree.Element) (string, error) {
	var b strings.Builder
	if err := Render(&b, el); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Attributes converts element properties to HTML attributes sorted by key.
// true becomes an empty attribute, false and nil are dropped, numbers are
// formatted in decimal and other values that are not strings are encoded as
// JSON.
func Attributes(p mdtree.Props) []html.Attribute {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]html.Attribute, 0, len(keys))
	for _, k := range keys {
		val, ok := attrValue(p[k])
		if !ok {
			continue
		}
		attrs = append(attrs, html.Attribute{Key: k, Val: val})
	}
	return attrs
}

func attrValue(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", v
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(b), true
	}
}
