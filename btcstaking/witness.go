package btcstaking

import "sort"

// SignatureInfo binds a covenant signature to the public key that produced
// it, as received from an external signer.
type SignatureInfo struct {
	PubKey    []byte
	Signature []byte
}

// CreateWitness composes the covenant portion of a spend witness: for every
// covenant pubkey (in descending lexicographic order, the opposite
// direction from multiKeyScript's ascending sort, see scripts.go), it emits
// the matching signature if one was supplied, or an empty element
// otherwise. The composed signatures are prepended to originalWitness,
// which typically already holds the staker/finality-provider signatures
// followed by the tap leaf script and control block.
//
// Duplicate signatures for the same pubkey resolve to the first match.
func CreateWitness(
	originalWitness [][]byte,
	covenantPubKeys [][]byte,
	covenantSigs []SignatureInfo,
) [][]byte {

	sorted := make([][]byte, len(covenantPubKeys))
	copy(sorted, covenantPubKeys)
	sort.Slice(sorted, func(i, j int) bool {
		return compareBytes(sorted[i], sorted[j]) > 0
	})

	sigByPubKey := make(map[string][]byte, len(covenantSigs))
	for _, sig := range covenantSigs {
		key := string(sig.PubKey)
		if _, exists := sigByPubKey[key]; exists {
			continue
		}
		sigByPubKey[key] = sig.Signature
	}

	composed := make([][]byte, len(sorted))
	for i, pk := range sorted {
		if sig, ok := sigByPubKey[string(pk)]; ok {
			composed[i] = sig
		} else {
			composed[i] = []byte{}
		}
	}

	witness := make([][]byte, 0, len(composed)+len(originalWitness))
	witness = append(witness, composed...)
	witness = append(witness, originalWitness...)

	return witness
}
