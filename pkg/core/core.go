package core

import (
	"github.com/ckeyscan/ckeyscan/internal/engine"
	"github.com/ckeyscan/ckeyscan/internal/hexcodec"
	"github.com/ckeyscan/ckeyscan/internal/scanner/factory"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/validate"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config = engine.Config
	Result = engine.Result
	Record = types.Record
	Mode   = types.Mode
	Policy = validate.Policy
)

// Scan modes.
const (
	ModeLegacy     = types.ModeLegacy
	ModeStructural = types.ModeStructural
)

// Label prefixes every reported record.
const Label = types.Label

// Scan is the stable entrypoint for other programs. cfg.Root may name a
// single wallet file or a directory tree.
func Scan(cfg Config) ([]Record, error) {
	return engine.Scan(cfg)
}

// ScanWithStats is Scan plus counts and timing.
func ScanWithStats(cfg Config) (Result, error) {
	return engine.ScanWithStats(cfg)
}

// ScanBytes scans an in-memory wallet image with the default policy for
// mode.
func ScanBytes(name string, data []byte, mode Mode, skipDegenerate bool) ([]Record, error) {
	fr, err := engine.ScanBuffer(name, data, validate.DefaultPolicy(mode, skipDegenerate))
	if err != nil {
		return nil, err
	}
	return fr.Records, nil
}

// ParseMode accepts "legacy" or "structural"; the empty string is legacy.
func ParseMode(s string) (Mode, error) { return factory.ParseMode(s) }

// Modes lists the supported mode names.
func Modes() []string { return factory.Modes() }

// EncodeHex and DecodeHex convert between bytes and the lowercase hex used in
// records.
func EncodeHex(b []byte) string { return hexcodec.Encode(b) }

func DecodeHex(s string) ([]byte, error) { return hexcodec.Decode(s) }
