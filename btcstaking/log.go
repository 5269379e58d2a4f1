package btcstaking

import "github.com/btcsuite/btclog"

// log is the package-level logger. It defaults to a no-op logger so that
// importing this package never produces output on its own; embedders call
// UseLogger to wire up their own backend.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by the btcstaking builders.
func UseLogger(logger btclog.Logger) {
	log = logger
}
