// Package minversion pulls the encrypted master-password words that
// Berkeley DB wallets store shortly after the "minversion" key.
package minversion

import (
	"bytes"
	"strings"

	"github.com/ckeyscan/ckeyscan/internal/hexcodec"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
)

const (
	// WindowSize is how many bytes after the marker are considered.
	WindowSize = 7 * 6
	// MaxWords caps the number of whitespace-separated fields kept.
	MaxWords = 10
)

var marker = []byte("minversion")

// Password is the extracted value.
type Password struct {
	MarkerOffset int    `json:"marker_offset"`
	Text         string `json:"text"`
	Hex          string `json:"hex"`
}

// Extract finds the first marker and returns the words that follow it. The
// window is clipped at the end of the buffer. ok is false when the marker is
// absent.
func Extract(buf *wallet.Buffer) (Password, bool) {
	data := buf.Bytes()
	at := bytes.Index(data, marker)
	if at < 0 {
		return Password{}, false
	}
	start := at + len(marker)
	end := start + WindowSize
	if end > len(data) {
		end = len(data)
	}
	fields := bytes.FieldsFunc(data[start:end], isASCIISpace)
	if len(fields) > MaxWords {
		fields = fields[:MaxWords]
	}
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = string(f)
	}
	text := strings.Join(words, " ")
	return Password{
		MarkerOffset: at,
		Text:         text,
		Hex:          hexcodec.Encode([]byte(text)),
	}, true
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
