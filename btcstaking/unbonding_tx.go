package btcstaking

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// UnbondingTransaction spends the staking output's unbonding path, moving
// its full value (less fee) into a new Taproot output over the unbonding
// script tree. There is no change output: unbonding transfers everything.
func UnbondingTransaction(
	scripts *Scripts,
	stakingTx *wire.MsgTx,
	fee int64,
	netParams *chaincfg.Params,
	outputIndex uint32,
) (*psbt.Packet, error) {

	if fee <= 0 {
		return nil, fmt.Errorf(
			"fee must be positive: %w", ErrNonPositiveValue,
		)
	}
	if int(outputIndex) >= len(stakingTx.TxOut) {
		return nil, fmt.Errorf(
			"output index %d out of range for staking tx with %d outputs",
			outputIndex, len(stakingTx.TxOut),
		)
	}

	inputTree, err := BuildStakingOutputTree(scripts)
	if err != nil {
		return nil, fmt.Errorf("assembling staking input tree: %w", err)
	}

	outputTree, err := BuildUnbondingOutputTree(scripts)
	if err != nil {
		return nil, fmt.Errorf("assembling unbonding output tree: %w", err)
	}
	unbondingPkScript, err := outputTree.PkScript(netParams)
	if err != nil {
		return nil, fmt.Errorf("deriving unbonding output address: %w", err)
	}

	stakingOut := stakingTx.TxOut[outputIndex]
	stakingTxHash := stakingTx.TxHash()

	unsignedTx := wire.NewMsgTx(2)
	txIn := wire.NewTxIn(
		wire.NewOutPoint(&stakingTxHash, outputIndex), nil, nil,
	)
	txIn.Sequence = wire.MaxTxInSequenceNum
	unsignedTx.AddTxIn(txIn)

	unsignedTx.AddTxOut(wire.NewTxOut(stakingOut.Value-fee, unbondingPkScript))

	packet, err := psbt.NewFromUnsignedTx(unsignedTx)
	if err != nil {
		return nil, fmt.Errorf("initializing PSBT: %w", err)
	}

	controlBlock, err := inputTree.ControlBlock(scripts.UnbondingScript)
	if err != nil {
		return nil, fmt.Errorf("deriving control block: %w", err)
	}

	packet.Inputs[0].WitnessUtxo = &wire.TxOut{
		Value:    stakingOut.Value,
		PkScript: stakingOut.PkScript,
	}
	packet.Inputs[0].TaprootInternalKey = UnspendableInternalPubKey[:]
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
		ControlBlock: controlBlock,
		Script:       scripts.UnbondingScript,
		LeafVersion:  txscript.BaseLeafVersion,
	}}

	log.Debugf("built unbonding psbt: in_value=%d fee=%d out_value=%d",
		stakingOut.Value, fee, stakingOut.Value-fee)

	return packet, nil
}
