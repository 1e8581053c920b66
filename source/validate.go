package source

import (
	"errors"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports invalid UTF-8 input.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports input that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
)

const (
	minBinarySample = 64
	maxControlPct   = 2
)

// ValidateInput returns an error if src is not valid UTF-8 or looks binary.
// A NUL byte is always binary; otherwise input of at least 64 bytes is binary
// when 2% or more of its runes are control characters.
func ValidateInput(src []byte) error {
	var total, control int
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size == 1 {
			return ErrInvalidUTF8
		}
		if r == 0 {
			return ErrBinaryInput
		}
		total += size
		if isControlRune(r) {
			control++
		}
		i += size
	}
	if total >= minBinarySample && control*100 >= total*maxControlPct {
		return ErrBinaryInput
	}
	return nil
}

// Clean drops invalid UTF-8 sequences and control characters other than
// tab, newline and carriage return.
func Clean(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if (r == utf8.RuneError && size == 1) || isControlRune(r) {
			i += size
			continue
		}
		out = append(out, src[i:i+size]...)
		i += size
	}
	return out
}

func isControlRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7F
}
