package validate

import (
	"strings"
	"testing"

	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/stretchr/testify/assert"
)

// varied returns n hex characters without any run longer than one.
func varied(n int) string {
	const alpha = "0123456789abcdef"
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(alpha[i%len(alpha)])
	}
	return sb.String()
}

func TestCheck_LengthBoundaries(t *testing.T) {
	p := DefaultPolicy(types.ModeLegacy, false)
	tests := []struct {
		n    int
		want Reason
	}{
		{69, ReasonTooShort},
		{70, ReasonOK},
		{96, ReasonOK},
		{200, ReasonOK},
		{201, ReasonTooLong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Check(varied(tt.n)), "length %d", tt.n)
	}
}

func TestCheck_Degenerate(t *testing.T) {
	hex := varied(40) + "aaaaa" + varied(40)
	assert.Equal(t, ReasonDegenerate, DefaultPolicy(types.ModeLegacy, true).Check(hex))
	assert.Equal(t, ReasonOK, DefaultPolicy(types.ModeLegacy, false).Check(hex))

	four := varied(40) + "aaaa" + varied(40)
	assert.Equal(t, ReasonOK, DefaultPolicy(types.ModeLegacy, true).Check(four))
}

func TestCheck_LengthBeforeDegenerate(t *testing.T) {
	p := DefaultPolicy(types.ModeStructural, true)
	assert.Equal(t, ReasonTooShort, p.Check("00000"))
}

func TestAccept(t *testing.T) {
	p := DefaultPolicy(types.ModeStructural, true)
	assert.False(t, p.Accept(types.Record{Hex: strings.Repeat("00", 48)}))
	assert.True(t, DefaultPolicy(types.ModeStructural, false).Accept(types.Record{Hex: strings.Repeat("00", 48)}))
}

func TestHasRepeatRun(t *testing.T) {
	assert.True(t, HasRepeatRun("xxaaaaayy", 5))
	assert.True(t, HasRepeatRun("aaaaa", 5))
	assert.False(t, HasRepeatRun("aaaabaaaa", 5))
	assert.False(t, HasRepeatRun("", 5))
	assert.True(t, HasRepeatRun("a", 1))
}

func TestLengthBetween(t *testing.T) {
	if !LengthBetween("abcd", 2, 5) {
		t.Fatal("expected true for length between")
	}
	if LengthBetween("a", 2, 5) {
		t.Fatal("expected false for too short")
	}
	if LengthBetween("abcdef", 2, 5) {
		t.Fatal("expected false for too long")
	}
}

func TestIsAlphabet(t *testing.T) {
	if !IsAlphabet("abcXYZ09", "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789") {
		t.Fatal("expected alnum to be allowed")
	}
	if IsAlphabet("abc-", "abc") {
		t.Fatal("expected false when char not allowed")
	}
}

func TestIsLowerHex(t *testing.T) {
	assert.True(t, IsLowerHex("deadbeef"))
	assert.False(t, IsLowerHex("DEADBEEF"))
	assert.False(t, IsLowerHex("abc"))
	assert.False(t, IsLowerHex(""))
}
