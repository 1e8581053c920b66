package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"pkt.systems/mdtree"
)

// Format selects how Load interprets its input.
type Format uint8

const (
	// FormatAuto picks a format from the file extension, then from content.
	FormatAuto Format = iota
	// FormatJSON reads a serialized mdast tree.
	FormatJSON
	// FormatMarkdown parses Markdown text.
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "markdown"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses auto, json or markdown (md).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json", "mdast":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return FormatAuto, fmt.Errorf("unknown input format %q: expected auto|json|markdown", s)
	}
}

// Detect resolves FormatAuto for an input called name.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".mdast":
		return FormatJSON
	case ".md", ".markdown", ".mdown", ".mkd":
		return FormatMarkdown
	}
	if trimmed := bytes.TrimLeft(data, " \t\r\n\xEF\xBB\xBF"); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatMarkdown
}

// Load reads a document tree from data. name is used for format detection
// and error messages.
func Load(name string, data []byte, format Format) (*mdtree.Node, error) {
	if format == FormatAuto {
		format = Detect(name, data)
	}
	var (
		root *mdtree.Node
		err  error
	)
	switch format {
	case FormatJSON:
		root, err = FromJSON(data)
	case FormatMarkdown:
		root, err = FromMarkdown(data)
	default:
		err = fmt.Errorf("unsupported format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return root, nil
}
