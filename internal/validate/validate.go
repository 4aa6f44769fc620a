// Package validate decides which candidate records are reportable.
package validate

import (
	"strings"

	"github.com/ckeyscan/ckeyscan/internal/types"
)

// Acceptance bounds on the hex form of a record. Real ckey payloads are 48
// bytes (96 hex characters); the window tolerates legacy captures that carry
// a few framing bytes.
const (
	DefaultMinHexLen     = 70
	DefaultMaxHexLen     = 200
	DefaultDegenerateRun = 5
)

// Reason explains a validation outcome.
type Reason string

const (
	ReasonOK         Reason = "ok"
	ReasonTooShort   Reason = "too_short"
	ReasonTooLong    Reason = "too_long"
	ReasonDegenerate Reason = "degenerate"
)

// Policy configures record acceptance. The zero value is not useful; start
// from DefaultPolicy.
type Policy struct {
	Mode           types.Mode
	SkipDegenerate bool
	MinHexLen      int
	MaxHexLen      int
	DegenerateRun  int
}

// DefaultPolicy returns the standard bounds for mode.
func DefaultPolicy(mode types.Mode, skipDegenerate bool) Policy {
	return Policy{
		Mode:           mode,
		SkipDegenerate: skipDegenerate,
		MinHexLen:      DefaultMinHexLen,
		MaxHexLen:      DefaultMaxHexLen,
		DegenerateRun:  DefaultDegenerateRun,
	}
}

// Check applies the length bound and then, when enabled, the degenerate
// repeated-character rule.
func (p Policy) Check(hex string) Reason {
	n := len(hex)
	if n < p.MinHexLen {
		return ReasonTooShort
	}
	if n > p.MaxHexLen {
		return ReasonTooLong
	}
	if p.SkipDegenerate && HasRepeatRun(hex, p.DegenerateRun) {
		return ReasonDegenerate
	}
	return ReasonOK
}

// Accept reports whether the record passes the policy.
func (p Policy) Accept(r types.Record) bool {
	return p.Check(r.Hex) == ReasonOK
}

// HasRepeatRun reports whether s contains some character repeated at least
// n times in a row.
func HasRepeatRun(s string, n int) bool {
	if n <= 1 {
		return s != ""
	}
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// LengthBetween returns true if len(s) is within [min,max].
func LengthBetween(s string, min, max int) bool {
	n := len(s)
	return n >= min && n <= max
}

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IsLowerHex reports whether s is non-empty lowercase hex of even length, the
// form records are reported in.
func IsLowerHex(s string) bool {
	return len(s)%2 == 0 && IsAlphabet(s, "0123456789abcdef")
}
