package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ckeyscan/ckeyscan/internal/types"
)

// DefaultBaselineFile is the baseline looked up in the working directory.
const DefaultBaselineFile = "ckeyscan.baseline.json"

type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline. A malformed file yields an empty baseline
// and the decode error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, records []types.Record) error {
	b := Baseline{Items: map[string]bool{}}
	for _, r := range records {
		b.Items[Key(r)] = true
	}
	return WriteBaseline(path, b)
}

// WriteBaseline writes b as is.
func WriteBaseline(path string, b Baseline) error {
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o600)
}

// FilterNew drops records present in base.
func FilterNew(records []types.Record, base Baseline) []types.Record {
	var out []types.Record
	for _, r := range records {
		if !base.Items[Key(r)] {
			out = append(out, r)
		}
	}
	return out
}

// Key identifies a record in a baseline.
func Key(r types.Record) string {
	return r.Path + "|" + r.Hex
}

// Fail-on policies.
const (
	FailOnAny  = "any"
	FailOnNone = "none"
)

// ValidateFailOn rejects anything but a known fail-on policy.
func ValidateFailOn(failOn string) error {
	switch failOn {
	case FailOnAny, FailOnNone:
		return nil
	}
	return fmt.Errorf("unknown value %q (want %s or %s)", failOn, FailOnAny, FailOnNone)
}

// ShouldFail applies the fail-on policy: "any" fails when a record remains,
// every other value never fails.
func ShouldFail(records []types.Record, failOn string) bool {
	return failOn == FailOnAny && len(records) > 0
}
