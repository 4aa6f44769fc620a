package analyze

import (
	"errors"
	"strings"
	"testing"

	"github.com/ckeyscan/ckeyscan/internal/hexcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_CKey(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 48; i++ {
		sb.WriteString(hexcodec.Encode([]byte{byte(i*37 + 11)}))
	}
	r, err := Inspect(strings.ToUpper(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, ClassCKey, r.Class)
	assert.Equal(t, 48, r.Length)
	assert.Equal(t, sb.String(), r.Hex)
	assert.True(t, r.Valid)
	assert.False(t, r.Degenerate)
	assert.Len(t, r.SHA256, 64)
	assert.NotEmpty(t, r.Base58)
}

func TestInspect_KnownEncodings(t *testing.T) {
	r, err := Inspect("68656c6c6f")
	require.NoError(t, err)
	assert.Equal(t, "hello", r.ASCII)
	assert.Equal(t, "aGVsbG8=", r.Base64)
	assert.Equal(t, "NBSWY3DP", r.Base32)
	assert.Equal(t, "Cn8eVZg", r.Base58)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", r.SHA256)
	assert.Equal(t, ClassOutOfRange, r.Class)
	assert.False(t, r.Valid)
}

func TestInspect_DegenerateCandidate(t *testing.T) {
	r, err := Inspect(strings.Repeat("00", 40))
	require.NoError(t, err)
	assert.Equal(t, ClassCandidate, r.Class)
	assert.True(t, r.Degenerate)
	assert.False(t, r.Valid)
}

func TestInspect_BadHex(t *testing.T) {
	_, err := Inspect("xyz")
	var fe *hexcodec.FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "a.b.", Printable([]byte{'a', 0x00, 'b', 0xff}))
}
