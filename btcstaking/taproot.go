package btcstaking

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// internalPubKey returns the fixed unspendable internal key as a
// *btcec.PublicKey, for use with the txscript Taproot helpers that expect
// a parsed point rather than raw x-only bytes.
func internalPubKey() (*btcec.PublicKey, error) {
	return schnorr.ParsePubKey(UnspendableInternalPubKey[:])
}

// leafProof is one leaf's BIP-341 inclusion proof: the sibling hashes
// encountered walking from the leaf up to the tree root, in leaf-to-root
// order (the order BIP-341 control blocks are serialized in).
type leafProof struct {
	leaf     txscript.TapLeaf
	siblings []chainhash.Hash
}

// ScriptTree is an assembled Taproot script tree for one of this protocol's
// three canonical layouts: the 2-level staking output tree, the
// 1-level unbonding output tree, or the degenerate single-leaf slashing
// change tree.
type ScriptTree struct {
	rootHash chainhash.Hash
	leaves   []leafProof
}

// newScriptTree packages a root hash and its leaves' inclusion proofs into a
// ScriptTree.
func newScriptTree(rootHash chainhash.Hash, leaves []leafProof) *ScriptTree {
	return &ScriptTree{rootHash: rootHash, leaves: leaves}
}

// BuildStakingOutputTree assembles the staking output's 2-level, right-heavy
// tree: [ slashing_leaf, [ unbonding_leaf, timelock_leaf ] ].
func BuildStakingOutputTree(scripts *Scripts) (*ScriptTree, error) {
	slashingLeaf := txscript.NewBaseTapLeaf(scripts.SlashingScript)
	unbondingLeaf := txscript.NewBaseTapLeaf(scripts.UnbondingScript)
	timelockLeaf := txscript.NewBaseTapLeaf(scripts.TimelockScript)

	inner := txscript.NewTapBranch(unbondingLeaf, timelockLeaf)
	root := txscript.NewTapBranch(slashingLeaf, inner)

	innerHash := inner.TapHash()
	slashingHash := slashingLeaf.TapHash()
	unbondingHash := unbondingLeaf.TapHash()
	timelockHash := timelockLeaf.TapHash()

	leaves := []leafProof{
		{leaf: slashingLeaf, siblings: []chainhash.Hash{innerHash}},
		{leaf: unbondingLeaf, siblings: []chainhash.Hash{timelockHash, slashingHash}},
		{leaf: timelockLeaf, siblings: []chainhash.Hash{unbondingHash, slashingHash}},
	}

	return newScriptTree(root.TapHash(), leaves), nil
}

// BuildUnbondingOutputTree assembles the unbonding output's 1-level tree:
// [ slashing_leaf, unbonding_timelock_leaf ].
func BuildUnbondingOutputTree(scripts *Scripts) (*ScriptTree, error) {
	slashingLeaf := txscript.NewBaseTapLeaf(scripts.SlashingScript)
	unbondingTimelockLeaf := txscript.NewBaseTapLeaf(scripts.UnbondingTimelockScript)

	root := txscript.NewTapBranch(slashingLeaf, unbondingTimelockLeaf)

	slashingHash := slashingLeaf.TapHash()
	unbondingTimelockHash := unbondingTimelockLeaf.TapHash()

	leaves := []leafProof{
		{leaf: slashingLeaf, siblings: []chainhash.Hash{unbondingTimelockHash}},
		{leaf: unbondingTimelockLeaf, siblings: []chainhash.Hash{slashingHash}},
	}

	return newScriptTree(root.TapHash(), leaves), nil
}

// BuildDegenerateTree assembles a single-leaf tree: { leaf = leafScript }.
// Used for the slashing transaction's staker-residual output, whose leaf is
// the caller-supplied change_script (ordinarily an unbonding_timelock_script
// built against the parameters in force for that change output).
func BuildDegenerateTree(leafScript []byte) (*ScriptTree, error) {
	leaf := txscript.NewBaseTapLeaf(leafScript)

	leaves := []leafProof{
		{leaf: leaf, siblings: nil},
	}

	return newScriptTree(leaf.TapHash(), leaves), nil
}

// outputKey computes the Taproot output key tweaking the fixed internal key
// by this tree's script root, plus whether that output key's y-coordinate
// is odd (needed for the control block parity bit).
func (t *ScriptTree) outputKey() (*btcec.PublicKey, bool, error) {
	internalKey, err := internalPubKey()
	if err != nil {
		return nil, false, fmt.Errorf("parsing internal key: %w", err)
	}

	rootHash := t.rootHash
	outputKey := txscript.ComputeTaprootOutputKey(internalKey, rootHash[:])

	odd := outputKey.SerializeCompressed()[0] == secp256k1OddPrefix

	return outputKey, odd, nil
}

const secp256k1OddPrefix = 0x03

// PkScript returns the P2TR scriptPubKey for this tree on the given
// network.
func (t *ScriptTree) PkScript(netParams *chaincfg.Params) ([]byte, error) {
	addr, err := t.Address(netParams)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(addr)
}

// Address returns the bech32m P2TR address for this tree on the given
// network.
func (t *ScriptTree) Address(netParams *chaincfg.Params) (btcutil.Address, error) {
	outputKey, _, err := t.outputKey()
	if err != nil {
		return nil, err
	}

	return btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(outputKey), netParams,
	)
}

// ControlBlock derives the BIP-341 control block for spending through the
// given leaf script: (leaf_version | parity_bit) || internal_pubkey(32) ||
// sibling Merkle path, leaf-to-root.
func (t *ScriptTree) ControlBlock(leafScript []byte) ([]byte, error) {
	_, odd, err := t.outputKey()
	if err != nil {
		return nil, err
	}

	var match *leafProof
	for i := range t.leaves {
		if string(t.leaves[i].leaf.Script) == string(leafScript) {
			match = &t.leaves[i]
			break
		}
	}
	if match == nil {
		return nil, fmt.Errorf("leaf script is not part of this tree")
	}

	leadingByte := byte(match.leaf.LeafVersion)
	if odd {
		leadingByte |= 0x01
	}

	block := make([]byte, 0, 1+PkLength+len(match.siblings)*chainhash.HashSize)
	block = append(block, leadingByte)
	block = append(block, UnspendableInternalPubKey[:]...)
	for _, sibling := range match.siblings {
		block = append(block, sibling[:]...)
	}

	return block, nil
}

// RootHash returns the tree's Merkle root, e.g. to pass as a PSBT's
// TaprootMerkleRoot field.
func (t *ScriptTree) RootHash() chainhash.Hash {
	return t.rootHash
}
