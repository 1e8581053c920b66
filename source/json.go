package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"pkt.systems/mdtree"
)

// ErrMissingType reports a JSON document whose root has no type.
var ErrMissingType = errors.New("document root has no type")

// FromJSON decodes an mdast document tree. Unknown node types are kept and
// their untyped fields land in Node.Extra, so placeholders dump them in full.
func FromJSON(data []byte) (*mdtree.Node, error) {
	if err := ValidateInput(data); err != nil {
		return nil, err
	}
	return DecodeJSON(bytes.NewReader(data))
}

// DecodeJSON reads a single mdast document from r.
func DecodeJSON(r io.Reader) (*mdtree.Node, error) {
	var root *mdtree.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode mdast: %w", err)
	}
	if root == nil || root.Type == "" {
		return nil, ErrMissingType
	}
	return root, nil
}
