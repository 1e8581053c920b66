package mdtree

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// cancelCheckInterval is how many nodes are visited between context checks.
const cancelCheckInterval = 256

// Render converts the document tree rooted at node into an element tree.
//
// Render never fails on unknown or malformed nodes; those render as comment
// placeholders. It fails when an override callback fails (see
// WithOverrideFailure) or when WithMaxDepth is exceeded.
func Render(node *Node, opts ...RenderOption) (*Element, error) {
	return RenderContext(context.Background(), node, opts...)
}

// RenderContext is Render with cancellation. The context is checked every few
// hundred nodes.
func RenderContext(ctx context.Context, node *Node, opts ...RenderOption) (*Element, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	cfg := newRenderConfig(opts)
	r := renderer{cfg: &cfg, ctx: ctx}
	return r.run(node)
}

type renderer struct {
	cfg     *renderConfig
	ctx     context.Context
	visited int
	errs    []error
}

// frame is one pending node on the work stack. index and parent are the
// traversal context the node was visited with.
type frame struct {
	node   *Node
	index  int
	parent *frame
	depth  int

	el   *Element
	walk bool
	slot bool
	next int
	kids []*Element
}

func (f *frame) parentNode() *Node {
	if f.parent == nil {
		return nil
	}
	return f.parent.node
}

func (f *frame) path() []int {
	var p []int
	for c := f; c != nil && c.parent != nil; c = c.parent {
		p = append(p, c.index)
	}
	slices.Reverse(p)
	return p
}

func (f *frame) finish() *Element {
	if !f.walk {
		return f.el
	}
	if f.slot {
		f.el.Slots = map[string][]*Element{DefaultSlot: f.kids}
		return f.el
	}
	f.el.Children = append(f.el.Children, f.kids...)
	return f.el
}

func (r *renderer) run(root *Node) (*Element, error) {
	top, err := r.enter(root, 0, nil)
	if err != nil {
		return nil, err
	}
	stack := []*frame{top}
	var out *Element
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.walk && f.next < len(f.node.Children) {
			i := f.next
			f.next++
			child, err := r.enter(f.node.Children[i], i, f)
			if err != nil {
				return nil, err
			}
			if child.walk && len(child.node.Children) > 0 {
				stack = append(stack, child)
				continue
			}
			f.kids = append(f.kids, child.finish())
			continue
		}
		stack = stack[:len(stack)-1]
		el := f.finish()
		if f.parent == nil {
			out = el
			continue
		}
		f.parent.kids = append(f.parent.kids, el)
	}
	if len(r.errs) > 0 {
		return out, errors.Join(r.errs...)
	}
	return out, nil
}

// enter resolves the override for n and builds its element shell. Content is
// attached by the caller once every child has been entered.
func (r *renderer) enter(n *Node, index int, parent *frame) (*frame, error) {
	r.visited++
	if r.visited%cancelCheckInterval == 0 {
		if err := r.ctx.Err(); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	}
	f := &frame{node: n, index: index, parent: parent}
	if parent != nil {
		f.depth = parent.depth + 1
	}
	if r.cfg.maxDepth > 0 && f.depth > r.cfg.maxDepth {
		return nil, fmt.Errorf("%w: %d at %s", ErrMaxDepth, f.depth, pathString(f.path()))
	}
	if n == nil {
		f.el = r.placeholder(f, errMalformed)
		return f, nil
	}

	ov, err := resolve(r.cfg.overrides[n.Type], n)
	if err != nil {
		oerr := &OverrideError{Type: n.Type, Path: f.path(), Err: err}
		if r.cfg.failure == FailAbort {
			return nil, oerr
		}
		r.cfg.logger.Warn().Err(oerr).Msg("override failed, rendering placeholder")
		r.errs = append(r.errs, oerr)
		f.el = r.placeholder(f, err)
		return f, nil
	}
	if err := r.build(f, ov); err != nil {
		f.walk, f.slot = false, false
		f.el = r.placeholder(f, err)
	}
	return f, nil
}
