package factory

import (
	"fmt"
	"strings"

	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/scanner/legacy"
	"github.com/ckeyscan/ckeyscan/internal/scanner/structural"
	"github.com/ckeyscan/ckeyscan/internal/types"
)

// New creates the scanner for mode.
func New(mode types.Mode) (scanner.Scanner, error) {
	switch mode {
	case types.ModeLegacy:
		return legacy.New(), nil
	case types.ModeStructural:
		return structural.New(), nil
	default:
		return nil, fmt.Errorf("unknown scan mode %q (want %s)", mode, strings.Join(Modes(), "|"))
	}
}

// ParseMode normalizes a user-supplied mode name. An empty string selects
// the legacy scanner.
func ParseMode(s string) (types.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(types.ModeLegacy):
		return types.ModeLegacy, nil
	case string(types.ModeStructural):
		return types.ModeStructural, nil
	default:
		return "", fmt.Errorf("unknown scan mode %q (want %s)", s, strings.Join(Modes(), "|"))
	}
}

// Modes lists the supported mode names.
func Modes() []string {
	return []string{string(types.ModeLegacy), string(types.ModeStructural)}
}
