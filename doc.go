// Package mdtree renders a parsed Markdown document tree (mdast) into a tree of
// UI element descriptors.
//
// The renderer is a single pass over the input: every node is dispatched on its
// type to a default rule, unless the caller registered an override for that
// type. An override substitutes a component for the default tag and may inject
// extra properties; overridden containers receive their children through the
// default slot instead of as positional children.
//
// Core properties:
//   - Pure: no I/O, the input tree is never mutated
//   - Explicit work stack; tree depth costs heap, not goroutine stack
//   - Unknown or malformed nodes degrade to an inert comment placeholder
//   - Raw HTML is escaped unless the caller opts into injection
//
// Example:
//
//	doc := &mdtree.Node{Type: mdtree.NodeRoot, Children: []*mdtree.Node{
//		{Type: mdtree.NodeHeading, Depth: 1, Children: []*mdtree.Node{
//			{Type: mdtree.NodeText, Value: "Hello"},
//		}},
//	}}
//	el, err := mdtree.Render(doc,
//		mdtree.WithOverride(mdtree.NodeHeading, mdtree.Use(mdtree.Named("x-title"))),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Sub-packages turn element trees into HTML (dom), diagnostic dumps (dump) and
// adapt mdast JSON or Markdown text into Node trees (source).
package mdtree
