package types

// Mode selects the extraction strategy used to locate ckey records.
type Mode string

const (
	ModeLegacy     Mode = "legacy"
	ModeStructural Mode = "structural"
)

// Label is the literal tag printed in front of every reported record.
const Label = "ckey!"

// Record is a candidate encrypted-key record located in a wallet file. It is
// never mutated after a scanner creates it.
type Record struct {
	Path         string  `json:"path"`
	MarkerOffset int     `json:"marker_offset"`
	Payload      []byte  `json:"-"`
	Hex          string  `json:"hex"`
	Label        string  `json:"label"`
	Mode         Mode    `json:"mode"`
	Entropy      float64 `json:"entropy,omitempty"`
	Fingerprint  string  `json:"fingerprint,omitempty"` // xxhash64 of the payload
}
