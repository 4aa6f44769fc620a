// Package structural locates ckey records by the literal "ckey" tag and
// slices a fixed window relative to it.
//
// The offsets below describe where Bitcoin Core's Berkeley DB wallets place
// the encrypted key relative to the tag that names its record. They were
// measured from real files, not derived from a format definition. A change in
// the wallet serialization invalidates them and they must be re-measured.
package structural

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
)

const (
	// MarkerBackOffset is the distance from the start of the record window
	// to the tag.
	MarkerBackOffset = 52
	// WindowSize is the length of the record window starting at
	// tag-MarkerBackOffset.
	WindowSize = 123
	// EncryptedKeySize is the length of the encrypted key at the start of
	// the window.
	EncryptedKeySize = 48
	// HitStride is the net cursor advance after a tag, so the same tag is
	// not matched again at offset+1..offset+3.
	HitStride = 4
)

var marker = []byte("ckey")

// Scanner implements scanner.Scanner for the offset-anchored layout.
type Scanner struct{}

// New returns a structural scanner.
func New() *Scanner { return &Scanner{} }

func (s *Scanner) Mode() types.Mode { return types.ModeStructural }

// All yields one candidate per usable tag in file order.
func (s *Scanner) All(buf *wallet.Buffer) iter.Seq[types.Record] {
	return func(yield func(types.Record) bool) {
		data := buf.Bytes()
		size := len(data)
		// bytes.Index jumps the cursor to the next tag; the result is the
		// same as stepping one byte at a time.
		offset := 0
		for offset+len(marker) <= size {
			i := bytes.Index(data[offset:], marker)
			if i < 0 {
				return
			}
			offset += i
			if rec, ok := s.window(buf, offset); ok {
				if !yield(rec) {
					return
				}
			}
			offset += HitStride
		}
	}
}

// window materializes the record around a tag at offset, or reports false
// when the window does not fit inside the buffer.
func (s *Scanner) window(buf *wallet.Buffer, offset int) (types.Record, bool) {
	start := offset - MarkerBackOffset
	if start < 0 || start+WindowSize > buf.Size() {
		log.Debugf("structural tag at %d: window [%d,%d) outside %d bytes, skipped",
			offset, start, start+WindowSize, buf.Size())
		return types.Record{}, false
	}
	key, err := buf.Slice(start, EncryptedKeySize)
	if err != nil {
		panic(fmt.Sprintf("structural: window check admitted %v", err))
	}
	log.Tracef("structural tag at %d, key at %d", offset, start)
	return scanner.NewRecord(buf, types.ModeStructural, offset, key), true
}

// Scan collects All into a slice.
func (s *Scanner) Scan(buf *wallet.Buffer) []types.Record {
	var out []types.Record
	for r := range s.All(buf) {
		out = append(out, r)
	}
	return out
}
