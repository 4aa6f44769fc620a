// Package scanner defines the interface shared by the record extraction
// strategies and the helpers for the virtual paths they report.
package scanner

import (
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/ckeyscan/ckeyscan/internal/hexcodec"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
)

// Scanner extracts candidate records from a wallet buffer. Implementations
// must not modify the buffer and must return the same ordered sequence every
// time they run over the same buffer.
type Scanner interface {
	// Mode names the strategy.
	Mode() types.Mode

	// Scan returns every candidate in file order. Candidates are not
	// validated.
	Scan(buf *wallet.Buffer) []types.Record
}

// NewRecord builds a record from a payload found at offset. The payload must
// not be modified afterwards.
func NewRecord(buf *wallet.Buffer, mode types.Mode, offset int, payload []byte) types.Record {
	h := hexcodec.Encode(payload)
	return types.Record{
		Path:         buf.Path(),
		MarkerOffset: offset,
		Payload:      payload,
		Hex:          h,
		Label:        types.Label,
		Mode:         mode,
		Entropy:      Entropy(h),
		Fingerprint:  Fingerprint(payload),
	}
}

// Fingerprint returns the xxhash64 of b as 16 lowercase hex characters.
func Fingerprint(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Entropy returns the Shannon entropy of s in bits per character.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	var count [256]int
	for i := 0; i < len(s); i++ {
		count[s[i]]++
	}
	H := 0.0
	n := float64(len(s))
	for _, c := range count {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		H += -p * math.Log2(p)
	}
	return H
}
