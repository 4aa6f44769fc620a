package core

import (
	"encoding/json"
	"io"
)

// MarshalRecords pretty-prints records as JSON for humans or pipelines. A nil
// slice is written as [].
func MarshalRecords(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// UnmarshalRecords decodes records JSON and restores each payload from its
// hex.
func UnmarshalRecords(r io.Reader) ([]Record, error) {
	var rs []Record
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, err
	}
	for i := range rs {
		b, err := DecodeHex(rs[i].Hex)
		if err != nil {
			return nil, err
		}
		rs[i].Payload = b
	}
	return rs, nil
}
