package report

import (
	"encoding/json"
	"io"

	"github.com/ckeyscan/ckeyscan/internal/types"
)

// WriteJSON writes records as an indented JSON array. An empty result is
// written as [] rather than null.
func WriteJSON(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
