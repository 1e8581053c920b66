package mdtree

import (
	"encoding/json"
	"fmt"
)

var headingTags = [...]string{"", "h1", "h2", "h3", "h4", "h5", "h6"}

var containerTags = map[NodeType]string{
	NodeRoot:       "div",
	NodeParagraph:  "p",
	NodeBlockquote: "blockquote",
	NodeEmphasis:   "em",
	NodeStrong:     "strong",
	NodeDelete:     "s",
	NodeTable:      "table",
}

// build dispatches on the node type and fills f.el. A non-nil error marks the
// node as malformed; the caller renders the placeholder instead.
func (r *renderer) build(f *frame, ov resolved) error {
	n := f.node
	switch n.Type {
	case NodeRoot, NodeParagraph, NodeBlockquote, NodeEmphasis, NodeStrong, NodeDelete, NodeTable:
		if ov.active() {
			r.component(f, ov, nil, true)
			return nil
		}
		r.element(f, ov, containerTags[n.Type], nil, true)

	case NodeHeading:
		if ov.active() {
			r.component(f, ov, Props{"depth": n.Depth}, true)
			return nil
		}
		if n.Depth < 1 || n.Depth > 6 {
			return fmt.Errorf("%w: heading depth %d", errMalformed, n.Depth)
		}
		r.element(f, ov, headingTags[n.Depth], nil, true)

	case NodeList:
		if ov.active() {
			p := Props{"ordered": n.Ordered, "spread": n.Spread}
			if n.Start != nil {
				p["start"] = *n.Start
			}
			r.component(f, ov, p, true)
			return nil
		}
		if !n.Ordered {
			r.element(f, ov, "ul", nil, true)
			return nil
		}
		var p Props
		if n.Start != nil && *n.Start != 1 {
			p = Props{"start": *n.Start}
		}
		r.element(f, ov, "ol", p, true)

	case NodeListItem:
		if ov.active() {
			p := Props{"spread": n.Spread}
			if n.Checked != nil {
				p["checked"] = *n.Checked
			}
			r.component(f, ov, p, true)
			return nil
		}
		if n.Checked == nil {
			r.element(f, ov, "li", nil, true)
			return nil
		}
		r.element(f, ov, "li", Props{"class": "task-list-item"}, true)
		f.el.Children = append(f.el.Children, &Element{
			Kind:  KindElement,
			Tag:   "input",
			Props: Props{"type": "checkbox", "disabled": true, "checked": *n.Checked},
		})

	case NodeTableRow:
		align := columnAlign(f.parentNode(), f.index)
		if ov.active() {
			r.component(f, ov, Props{"index": f.index, "align": align}, true)
			return nil
		}
		r.element(f, ov, "tr", Props{"align": align}, true)

	case NodeTableCell:
		var table *Node
		if f.parent != nil {
			table = f.parent.parentNode()
		}
		align := columnAlign(table, f.index)
		header := r.headerCell(f)
		if ov.active() {
			r.component(f, ov, Props{"index": f.index, "align": align, "header": header}, true)
			return nil
		}
		tag := "td"
		if header {
			tag = "th"
		}
		r.element(f, ov, tag, Props{"align": align}, true)

	case NodeLink:
		if ov.active() {
			p := Props{"url": n.URL}
			r.linkExtras(p, n)
			r.component(f, ov, p, true)
			return nil
		}
		p := Props{"href": n.URL}
		r.linkExtras(p, n)
		r.element(f, ov, "a", p, true)

	case NodeImage:
		if ov.active() {
			p := Props{"url": n.URL, "alt": n.Alt}
			if n.Title != "" {
				p["title"] = n.Title
			}
			r.component(f, ov, p, false)
			return nil
		}
		p := Props{"src": n.URL, "alt": n.Alt}
		if n.Title != "" {
			p["title"] = n.Title
		}
		r.element(f, ov, "img", p, false)

	case NodeInlineCode:
		if ov.active() {
			r.component(f, ov, Props{"value": n.Value}, false)
			return nil
		}
		r.element(f, ov, "code", nil, false)
		f.el.Children = []*Element{textLeaf(n.Value)}

	case NodeCode:
		if ov.active() {
			r.component(f, ov, Props{"lang": n.Lang, "meta": n.Meta, "value": n.Value}, false)
			return nil
		}
		var p Props
		if n.Lang != "" || n.Meta != "" {
			p = Props{}
			if n.Lang != "" {
				p["data-lang"] = n.Lang
			}
			if n.Meta != "" {
				p["data-meta"] = n.Meta
			}
		}
		r.preformatted(f, ov, p, n.Value)

	case NodeHTML:
		if ov.active() {
			r.component(f, ov, Props{"value": n.Value}, false)
			return nil
		}
		switch r.cfg.rawHTML {
		case RawInject:
			f.el = &Element{Kind: KindRaw, Text: n.Value}
		case RawSanitize:
			f.el = &Element{Kind: KindRaw, Text: r.cfg.sanitize(n.Value)}
		default:
			r.preformatted(f, ov, Props{"data-lang": "html"}, n.Value)
		}

	case NodeBreak, NodeThematicBreak:
		if ov.active() {
			r.component(f, ov, nil, false)
			return nil
		}
		tag := "br"
		if n.Type == NodeThematicBreak {
			tag = "hr"
		}
		r.element(f, ov, tag, nil, false)

	case NodeYAML:
		if ov.active() {
			r.component(f, ov, Props{"lang": "yaml", "value": n.Value}, false)
			return nil
		}
		r.preformatted(f, ov, Props{"data-lang": "yaml"}, n.Value)

	case NodeText:
		if ov.active() {
			r.component(f, ov, Props{"value": n.Value}, false)
			return nil
		}
		f.el = textLeaf(n.Value)

	default:
		if ov.active() {
			r.component(f, ov, nil, false)
			return nil
		}
		f.el = r.placeholder(f, nil)
	}
	return nil
}

func (r *renderer) element(f *frame, ov resolved, tag string, derived Props, walk bool) {
	f.el = &Element{
		Kind:  KindElement,
		Tag:   tag,
		Props: mergeProps(derived, f.node.vueProps(), f.node.hProperties(), ov.props),
	}
	f.walk = walk
}

func (r *renderer) component(f *frame, ov resolved, derived Props, walk bool) {
	f.el = &Element{
		Kind:      KindElement,
		Tag:       ov.component.ComponentName(),
		Component: ov.component,
		Props:     mergeProps(derived, f.node.vueProps(), f.node.hProperties(), ov.props),
	}
	f.walk = walk
	f.slot = walk
}

func (r *renderer) preformatted(f *frame, ov resolved, derived Props, value string) {
	r.element(f, ov, "pre", derived, false)
	f.el.Children = []*Element{{
		Kind:     KindElement,
		Tag:      "code",
		Children: []*Element{textLeaf(value)},
	}}
}

func (r *renderer) linkExtras(p Props, n *Node) {
	if r.cfg.linkTarget != "" {
		p["target"] = r.cfg.linkTarget
	}
	if n.Title != "" {
		p["title"] = n.Title
	}
}

func (r *renderer) headerCell(f *frame) bool {
	row := f.parent
	if row == nil || row.node == nil || row.node.Type != NodeTableRow {
		return false
	}
	if r.cfg.headerCells == HeaderOffsetZero {
		pos := row.node.Position
		return pos != nil && pos.Start.Offset != nil && *pos.Start.Offset == 0
	}
	return row.index == 0
}

// columnAlign looks up column i of table, defaulting to left.
func columnAlign(table *Node, i int) string {
	if table == nil || table.Type != NodeTable {
		return string(AlignLeft)
	}
	if i < len(table.Align) && table.Align[i] != AlignNone {
		return string(table.Align[i])
	}
	return string(AlignLeft)
}

func textLeaf(value string) *Element {
	return &Element{Kind: KindText, Text: value}
}

// placeholder renders the inert comment used for nodes without a rule.
func (r *renderer) placeholder(f *frame, cause error) *Element {
	if ev := r.cfg.logger.Debug(); ev.Enabled() {
		if f.node != nil {
			ev = ev.Str("type", string(f.node.Type))
		}
		if cause != nil {
			ev = ev.AnErr("cause", cause)
		}
		ev.Str("path", pathString(f.path())).Msg("rendering placeholder")
	}
	if r.cfg.strictFallback {
		return &Element{Kind: KindComment}
	}
	return &Element{Kind: KindComment, Text: dumpNode(f.node)}
}

func dumpNode(n *Node) string {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Sprintf(`{"type":%q}`, n.Type)
	}
	return string(b)
}
