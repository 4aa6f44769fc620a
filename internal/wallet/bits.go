package wallet

import (
	"bufio"
	"io"
)

// WriteBits writes the buffer as an ASCII string of '0' and '1', most
// significant bit first, eight characters per byte.
func (b *Buffer) WriteBits(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	var chunk [8]byte
	for _, c := range b.data {
		for i := 0; i < 8; i++ {
			if c&(0x80>>i) != 0 {
				chunk[i] = '1'
			} else {
				chunk[i] = '0'
			}
		}
		m, err := bw.Write(chunk[:])
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
