package mdtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Typed JSON keys, lower-cased; encoding/json matches field names without
// regard to case.
var (
	nodeKeys = jsonKeys(reflect.TypeFor[Node]())
	dataKeys = jsonKeys(reflect.TypeFor[Data]())
)

type (
	plainNode Node
	plainData Data
)

// UnmarshalJSON decodes an mdast node, keeping unknown fields in Extra.
func (n *Node) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var plain plainNode
	if err := json.Unmarshal(b, &plain); err != nil {
		return err
	}
	extra, err := unknownFields(b, nodeKeys)
	if err != nil {
		return err
	}
	plain.Extra = extra
	*n = Node(plain)
	return nil
}

// MarshalJSON encodes the typed fields followed by Extra in key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal((*plainNode)(n))
	if err != nil {
		return nil, err
	}
	return appendFields(b, n.Extra, nodeKeys)
}

// UnmarshalJSON decodes node data, keeping unknown fields in Extra.
func (d *Data) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var plain plainData
	if err := json.Unmarshal(b, &plain); err != nil {
		return err
	}
	extra, err := unknownFields(b, dataKeys)
	if err != nil {
		return err
	}
	plain.Extra = extra
	*d = Data(plain)
	return nil
}

// MarshalJSON encodes the typed fields followed by Extra in key order.
func (d *Data) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal((*plainData)(d))
	if err != nil {
		return nil, err
	}
	return appendFields(b, d.Extra, dataKeys)
}

func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[strings.ToLower(name)] = true
		}
	}
	return keys
}

func unknownFields(b []byte, known map[string]bool) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k := range all {
		if known[strings.ToLower(k)] {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// appendFields splices extra into the JSON object b. Keys that collide with
// a typed field are skipped.
func appendFields(b []byte, extra map[string]json.RawMessage, known map[string]bool) ([]byte, error) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !known[strings.ToLower(k)] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return b, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Grow(len(b) + 16*len(keys))
	buf.Write(b[:len(b)-1])
	for _, k := range keys {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := json.Compact(&buf, extra[k]); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
