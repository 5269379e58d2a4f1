package btcstaking

import (
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var curveInitOnce sync.Once

// InitBTCCurve initializes the secp256k1 curve singleton that every Taproot
// operation in this package (and the btcec/v2 layer it sits on) relies on.
// Call it once before BuildStakingOutputTree or any other Taproot-producing
// operation runs. Idempotent: subsequent calls are no-ops.
func InitBTCCurve() {
	curveInitOnce.Do(func() {
		// Touching the curve singleton forces its base-point table and
		// field constants to be initialized exactly once, ahead of any
		// concurrent Taproot tweak computed by this package.
		_ = secp256k1.S256()
	})
}
