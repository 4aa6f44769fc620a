package engine

import "github.com/btcsuite/btclog/v2"

// log is disabled until the caller sets a logger with UseLogger.
var log = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}
