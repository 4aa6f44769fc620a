package wallet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsWholeFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "wallet.dat")
	content := bytes.Repeat([]byte{0xab}, 4096)
	require.NoError(t, os.WriteFile(p, content, 0o600))

	b, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 4096, b.Size())
	assert.Equal(t, byte(0xab), b.ByteAt(4095))
	assert.Equal(t, p, b.Path())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.dat"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSlice_Bounds(t *testing.T) {
	b := FromBytes("mem", []byte("0123456789"))

	got, err := b.Slice(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), got)

	got, err = b.Slice(0, 10)
	require.NoError(t, err)
	assert.Len(t, got, 10)

	got, err = b.Slice(10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, tc := range []struct{ start, n int }{{-1, 2}, {8, 3}, {0, 11}, {2, -1}} {
		_, err := b.Slice(tc.start, tc.n)
		assert.ErrorIs(t, err, ErrOutOfRange, "start=%d n=%d", tc.start, tc.n)
	}
}

func TestSlice_IsCapped(t *testing.T) {
	b := FromBytes("mem", []byte("0123456789"))
	got, err := b.Slice(0, 4)
	require.NoError(t, err)
	got = append(got, 'x')
	assert.Equal(t, byte('4'), b.ByteAt(4), "append on a view must not write into the buffer")
	assert.Equal(t, "0123x", string(got))
}

func TestSniffHeader(t *testing.T) {
	sqlite := append([]byte("SQLite format 3\x00"), make([]byte, 84)...)
	assert.Equal(t, FormatSQLite, SniffHeader(sqlite))
	assert.True(t, IsSQLite(sqlite))

	bdb := make([]byte, 64)
	binary.LittleEndian.PutUint32(bdb[12:], bdbBtreeMagic)
	assert.Equal(t, FormatBerkeleyDB, SniffHeader(bdb))

	bdbBE := make([]byte, 64)
	binary.BigEndian.PutUint32(bdbBE[12:], bdbBtreeMagic)
	assert.Equal(t, FormatBerkeleyDB, SniffHeader(bdbBE))

	assert.Equal(t, FormatUnknown, SniffHeader([]byte("SQLite")))
	assert.Equal(t, FormatUnknown, Sniff(FromBytes("mem", make([]byte, 200))))
}

func TestWriteBits(t *testing.T) {
	var out bytes.Buffer
	n, err := FromBytes("mem", []byte{0x01, 0x80, 0xff}).WriteBits(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(24), n)
	assert.Equal(t, "000000011000000011111111", out.String())
}
