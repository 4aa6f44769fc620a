// Package legacy finds ckey records framed by control characters:
// SOH EOT, optional whitespace, the literal "ckey!", then everything up to the
// next EOT.
package legacy

import (
	"bytes"
	"iter"
	"regexp"

	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
)

// reRecord is dot-all and non-greedy so the first EOT after the tag ends the
// capture even across newlines.
var reRecord = regexp.MustCompile(`(?s)\x01\x04[\t\n\v\f\r ]*ckey!(.*?)\x04`)

// cutset trimmed from both ends of a capture.
const cutset = "\x00\t\n\v\f\r "

// Scanner implements scanner.Scanner for the delimiter-based layout.
type Scanner struct{}

// New returns a legacy scanner.
func New() *Scanner { return &Scanner{} }

func (s *Scanner) Mode() types.Mode { return types.ModeLegacy }

// All yields candidates lazily, left to right, without overlap. Matches are
// computed only as the sequence is consumed.
func (s *Scanner) All(buf *wallet.Buffer) iter.Seq[types.Record] {
	return func(yield func(types.Record) bool) {
		data := buf.Bytes()
		pos := 0
		for pos < len(data) {
			loc := reRecord.FindSubmatchIndex(data[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			payload := bytes.Trim(data[pos+loc[2]:pos+loc[3]], cutset)
			payload = payload[:len(payload):len(payload)]
			log.Tracef("legacy hit at %d (%d payload bytes)", start, len(payload))
			if !yield(scanner.NewRecord(buf, types.ModeLegacy, start, payload)) {
				return
			}
			pos = end
		}
	}
}

// Scan collects All into a slice.
func (s *Scanner) Scan(buf *wallet.Buffer) []types.Record {
	var out []types.Record
	for r := range s.All(buf) {
		out = append(out, r)
	}
	return out
}
