package mdtree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNilNode reports a nil root node.
	ErrNilNode = errors.New("nil node")
	// ErrOverrideFunc reports an override func that returned another override func.
	ErrOverrideFunc = errors.New("override func returned an override func")
	// ErrMaxDepth reports a tree deeper than the configured limit.
	ErrMaxDepth = errors.New("maximum tree depth exceeded")
)

var errMalformed = errors.New("malformed node")

// OverrideError reports a failed override callback.
type OverrideError struct {
	Type NodeType
	// Path holds the child indexes leading from the root to the node.
	Path []int
	Err  error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("override %s at %s: %v", e.Type, pathString(e.Path), e.Err)
}

func (e *OverrideError) Unwrap() error {
	return e.Err
}

func pathString(path []int) string {
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range path {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}
