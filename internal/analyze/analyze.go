// Package analyze inspects a single hex record supplied by the user, such as
// one copied from a previous scan.
package analyze

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ckeyscan/ckeyscan/internal/hexcodec"
	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/scanner/structural"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/validate"
)

// Class is the coarse kind of an inspected value.
type Class string

const (
	// ClassCKey is exactly one structural encrypted key.
	ClassCKey Class = "ckey"
	// ClassCandidate passes the record length bounds.
	ClassCandidate Class = "candidate"
	// ClassOutOfRange is valid hex outside the record bounds.
	ClassOutOfRange Class = "out_of_range"
)

// Report describes an inspected value.
type Report struct {
	Hex        string  `json:"hex"`
	Length     int     `json:"length"`
	Class      Class   `json:"class"`
	ASCII      string  `json:"ascii"`
	Base32     string  `json:"base32"`
	Base58     string  `json:"base58"`
	Base64     string  `json:"base64"`
	SHA256     string  `json:"sha256"`
	Entropy    float64 `json:"entropy"`
	Degenerate bool    `json:"degenerate"`
	Valid      bool    `json:"valid"`
}

// Inspect decodes s and fills a report. Decode failures return the
// *hexcodec.FormatError unchanged.
func Inspect(s string) (Report, error) {
	s = strings.TrimSpace(s)
	raw, err := hexcodec.Decode(s)
	if err != nil {
		return Report{}, err
	}
	h := hexcodec.Encode(raw)
	policy := validate.DefaultPolicy(types.ModeLegacy, true)
	reason := policy.Check(h)

	r := Report{
		Hex:        h,
		Length:     len(raw),
		ASCII:      Printable(raw),
		Base32:     base32.StdEncoding.EncodeToString(raw),
		Base58:     base58.Encode(raw),
		Base64:     base64.StdEncoding.EncodeToString(raw),
		SHA256:     hex.EncodeToString(chainhash.HashB(raw)),
		Entropy:    scanner.Entropy(h),
		Degenerate: reason == validate.ReasonDegenerate,
		Valid:      reason == validate.ReasonOK,
	}
	switch {
	case len(raw) == structural.EncryptedKeySize:
		r.Class = ClassCKey
	case validate.LengthBetween(h, policy.MinHexLen, policy.MaxHexLen):
		r.Class = ClassCandidate
	default:
		r.Class = ClassOutOfRange
	}
	return r, nil
}

// Printable renders b as ASCII, replacing non-printable bytes with '.'.
func Printable(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
