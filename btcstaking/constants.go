package btcstaking

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// PkLength is the length in bytes of a BIP-340 x-only public key.
const PkLength = 32

// TapscriptLeafVersion is the BIP-342 Tapscript leaf version used for every
// leaf this package produces.
const TapscriptLeafVersion = 0xC0

// unspendableKeyHex is the compressed serialization of a nothing-up-my-sleeve
// public key with no known discrete log, dropped to x-only form below for
// use as the Taproot internal key. It is the standard unspendable key quoted
// in BIP-341's reference test vectors.
const unspendableKeyHex = "0250929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"

// UnspendableInternalPubKey is the fixed, provably unspendable x-only public
// key used as the Taproot internal key for every script tree this package
// assembles. It never changes across parameters, networks, or spend paths.
var UnspendableInternalPubKey [PkLength]byte

func init() {
	raw, err := hex.DecodeString(unspendableKeyHex)
	if err != nil {
		panic("btcstaking: malformed unspendable key constant: " + err.Error())
	}

	pk, err := schnorr.ParsePubKey(raw[1:])
	if err != nil {
		panic("btcstaking: unspendable key constant does not parse: " + err.Error())
	}

	copy(UnspendableInternalPubKey[:], schnorr.SerializePubKey(pk))
}
