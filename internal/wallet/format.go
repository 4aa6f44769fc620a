package wallet

import (
	"bytes"
	"encoding/binary"
)

// Format is the container format guessed from a file header.
type Format string

const (
	FormatUnknown    Format = "unknown"
	FormatBerkeleyDB Format = "berkeleydb"
	FormatSQLite     Format = "sqlite"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// Berkeley DB btree metadata pages carry this magic at offset 12.
const (
	bdbBtreeMagic       = 0x00053162
	bdbBtreeMagicOffset = 12
)

// IsSQLite reports whether the header matches the SQLite 3 signature. Newer
// Bitcoin Core descriptor wallets use SQLite; the scanners expect the legacy
// Berkeley DB layout and are unlikely to find records in them.
func IsSQLite(header []byte) bool {
	return len(header) >= len(sqliteMagic) && bytes.Equal(header[:len(sqliteMagic)], sqliteMagic)
}

// Sniff classifies the buffer from its first bytes.
func Sniff(b *Buffer) Format {
	return SniffHeader(b.data)
}

// SniffHeader classifies raw header bytes.
func SniffHeader(header []byte) Format {
	if IsSQLite(header) {
		return FormatSQLite
	}
	if len(header) >= bdbBtreeMagicOffset+4 {
		m := header[bdbBtreeMagicOffset : bdbBtreeMagicOffset+4]
		if binary.LittleEndian.Uint32(m) == bdbBtreeMagic || binary.BigEndian.Uint32(m) == bdbBtreeMagic {
			return FormatBerkeleyDB
		}
	}
	return FormatUnknown
}
