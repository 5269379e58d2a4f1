package btcstaking

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// UTXO is a caller-supplied funding input: a prior transaction output this
// package's builders may spend from. Coin selection is the caller's
// responsibility; the builders only validate sufficiency of the sum.
type UTXO struct {
	Txid     chainhash.Hash
	Vout     uint32
	PkScript []byte
	Value    int64
}
