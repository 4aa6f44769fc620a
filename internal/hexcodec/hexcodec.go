// Package hexcodec converts raw record bytes to lowercase hexadecimal and
// back. It holds no state.
package hexcodec

import (
	"encoding/hex"
	"fmt"
)

// FormatError reports hex input that cannot be decoded.
type FormatError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("hexcodec: %s at position %d", e.Reason, e.Pos)
	}
	return "hexcodec: " + e.Reason
}

// Encode returns the lowercase hex form of b.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// Decode parses s (either case) into bytes.
func Decode(s string) ([]byte, error) {
	if len(s)%2 == 1 {
		return nil, &FormatError{Input: s, Pos: -1, Reason: fmt.Sprintf("odd length %d", len(s))}
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return nil, &FormatError{Input: s, Pos: i, Reason: fmt.Sprintf("invalid hex digit %q", s[i])}
		}
	}
	out := make([]byte, len(s)/2)
	if _, err := hex.Decode(out, []byte(s)); err != nil {
		return nil, &FormatError{Input: s, Pos: -1, Reason: err.Error()}
	}
	return out, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
