package ckeyscan

import (
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/ckeyscan/ckeyscan/internal/artifacts"
	"github.com/ckeyscan/ckeyscan/internal/engine"
	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/scanner/legacy"
	"github.com/ckeyscan/ckeyscan/internal/scanner/structural"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
)

// log is the CLI's own logger.
var log = btclog.Disabled

// subsystemLoggers maps each subsystem tag to the packages that log under it.
var subsystemLoggers = map[string][]func(btclog.Logger){
	"CMD":  {func(l btclog.Logger) { log = l }},
	"SCAN": {scanner.UseLogger, legacy.UseLogger, structural.UseLogger},
	"WLLT": {wallet.UseLogger},
	"ENGN": {engine.UseLogger},
	"ARTF": {artifacts.UseLogger},
}

// logOutput is where log lines go. Tests swap it.
var logOutput io.Writer = os.Stderr

// setupLoggers builds one handler on logOutput and hands every subsystem a
// logger at the given level.
func setupLoggers(level string) error {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	root := btclog.NewSLogger(btclog.NewDefaultHandler(logOutput))
	for tag, uses := range subsystemLoggers {
		l := root.SubSystem(tag)
		l.SetLevel(lvl)
		for _, use := range uses {
			use(l)
		}
	}
	return nil
}
