package mdtree

import "testing"

func text(v string) *Node {
	return &Node{Type: NodeText, Value: v}
}

func parent(t NodeType, children ...*Node) *Node {
	return &Node{Type: t, Children: children}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func mustRender(t *testing.T, n *Node, opts ...RenderOption) *Element {
	t.Helper()
	el, err := Render(n, opts...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if el == nil {
		t.Fatalf("render returned nil element")
	}
	return el
}

func onlyChild(t *testing.T, el *Element) *Element {
	t.Helper()
	content := el.Content()
	if len(content) != 1 {
		t.Fatalf("expected one child of %q, got %d", el.Tag, len(content))
	}
	return content[0]
}
