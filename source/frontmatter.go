package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Front matter delimiters: YAML, TOML and JSON.
const (
	DelimYAML = "---"
	DelimTOML = "+++"
	DelimJSON = ";;;"
)

// FrontMatter is a metadata block found at the very start of a document.
type FrontMatter struct {
	Delimiter string
	// Raw is the text between the delimiter lines.
	Raw []byte
	// End is the offset just past the closing delimiter line.
	End int
	// EndLine is the 1-based line of the closing delimiter.
	EndLine int
}

// SplitFrontMatter detects front matter at the start of src and returns it
// together with the remaining body. Without front matter it returns nil and
// src unchanged. The block must open and close with the same delimiter and
// its first line must look like metadata (contain ':' or '=', or open a JSON
// object or array); anything else is treated as document content.
func SplitFrontMatter(src []byte) (*FrontMatter, []byte) {
	open, next := nextLine(src, 0)
	delim, ok := openingDelimiter(open)
	if !ok {
		return nil, src
	}
	bodyStart := next
	first, _ := nextLine(src, next)
	if next >= len(src) || !metadataLikely(first) {
		return nil, src
	}
	line := 2
	for idx := next; idx < len(src); line++ {
		text, after := nextLine(src, idx)
		if bytes.Equal(bytes.TrimSpace(text), []byte(delim)) {
			fm := &FrontMatter{
				Delimiter: delim,
				Raw:       src[bodyStart:idx],
				End:       after,
				EndLine:   line,
			}
			return fm, src[after:]
		}
		idx = after
	}
	return nil, src
}

// YAML returns the front matter as YAML text. TOML and JSON blocks are
// decoded and re-encoded; YAML blocks are returned as written.
func (fm *FrontMatter) YAML() (string, error) {
	switch fm.Delimiter {
	case DelimTOML:
		var v map[string]any
		if err := toml.Unmarshal(fm.Raw, &v); err != nil {
			return "", fmt.Errorf("toml front matter: %w", err)
		}
		return encodeYAML(v)
	case DelimJSON:
		var v any
		if err := json.Unmarshal(fm.Raw, &v); err != nil {
			return "", fmt.Errorf("json front matter: %w", err)
		}
		return encodeYAML(v)
	default:
		return strings.TrimRight(string(fm.Raw), "\r\n"), nil
	}
}

// Decode unmarshals the front matter into v using YAML semantics.
func (fm *FrontMatter) Decode(v any) error {
	text, err := fm.YAML()
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("decode front matter: %w", err)
	}
	return nil
}

func encodeYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func nextLine(src []byte, start int) ([]byte, int) {
	if start >= len(src) {
		return nil, len(src)
	}
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src)
	}
	return trimCR(src[start : start+i]), start + i + 1
}

func openingDelimiter(line []byte) (string, bool) {
	switch d := string(bytes.TrimSpace(trimBOM(line))); d {
	case DelimYAML, DelimTOML, DelimJSON:
		return d, true
	default:
		return "", false
	}
}

func metadataLikely(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return true
	}
	return bytes.ContainsAny(trimmed, ":=")
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func trimBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xEF\xBB\xBF"))
}
