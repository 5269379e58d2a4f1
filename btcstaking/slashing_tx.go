package btcstaking

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SlashingTransaction spends redeemScript's slashing path out of tree,
// diverting slashingRate of the input value to slashingAddress and routing
// the remainder, less minimumFee, to a fresh degenerate Taproot output over
// changeScript.
//
// sourceTx.TxOut[0] is read for both the witness UTXO and the value
// computation regardless of outputIndex: outputIndex selects the spent
// outpoint but not the value source. Callers spending anything other than
// output 0 should treat outputIndex as selecting the outpoint only.
func SlashingTransaction(
	tree *ScriptTree,
	redeemScript []byte,
	sourceTx *wire.MsgTx,
	slashingAddress string,
	slashingRate float64,
	changeScript []byte,
	minimumFee int64,
	netParams *chaincfg.Params,
	outputIndex uint32,
) (*psbt.Packet, error) {

	if slashingRate <= 0 || minimumFee <= 0 {
		return nil, fmt.Errorf(
			"slashing rate and minimum fee must be positive: %w",
			ErrNonPositiveValue,
		)
	}
	if int(outputIndex) >= len(sourceTx.TxOut) {
		return nil, fmt.Errorf(
			"output index %d out of range for source tx with %d outputs",
			outputIndex, len(sourceTx.TxOut),
		)
	}

	sourceOut := sourceTx.TxOut[0]
	inputValue := sourceOut.Value

	slashingValue := int64(math.Floor(float64(inputValue) * slashingRate))
	userValue := int64(math.Floor(float64(inputValue)*(1-slashingRate))) - minimumFee

	if userValue <= 0 {
		return nil, fmt.Errorf(
			"computed staker residual %d is non-positive: %w",
			userValue, ErrInsufficientFundsForSlashing,
		)
	}

	slashingAddr, err := btcutil.DecodeAddress(slashingAddress, netParams)
	if err != nil {
		return nil, fmt.Errorf("decoding slashing address %q: %w",
			slashingAddress, err)
	}
	slashingPkScript, err := txscript.PayToAddrScript(slashingAddr)
	if err != nil {
		return nil, fmt.Errorf("building slashing output script: %w", err)
	}

	changeTree, err := BuildDegenerateTree(changeScript)
	if err != nil {
		return nil, fmt.Errorf("assembling change tree: %w", err)
	}
	changePkScript, err := changeTree.PkScript(netParams)
	if err != nil {
		return nil, fmt.Errorf("deriving change output address: %w", err)
	}

	sourceTxHash := sourceTx.TxHash()

	unsignedTx := wire.NewMsgTx(2)
	unsignedTx.AddTxIn(wire.NewTxIn(
		wire.NewOutPoint(&sourceTxHash, outputIndex), nil, nil,
	))
	unsignedTx.AddTxOut(wire.NewTxOut(slashingValue, slashingPkScript))
	unsignedTx.AddTxOut(wire.NewTxOut(userValue, changePkScript))

	packet, err := psbt.NewFromUnsignedTx(unsignedTx)
	if err != nil {
		return nil, fmt.Errorf("initializing PSBT: %w", err)
	}

	controlBlock, err := tree.ControlBlock(redeemScript)
	if err != nil {
		return nil, fmt.Errorf("deriving control block: %w", err)
	}

	packet.Inputs[0].WitnessUtxo = &wire.TxOut{
		Value:    sourceOut.Value,
		PkScript: sourceOut.PkScript,
	}
	packet.Inputs[0].TaprootInternalKey = UnspendableInternalPubKey[:]
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
		ControlBlock: controlBlock,
		Script:       redeemScript,
		LeafVersion:  txscript.BaseLeafVersion,
	}}

	log.Debugf("built slashing psbt: input=%d slashing=%d user=%d fee=%d",
		inputValue, slashingValue, userValue, minimumFee)

	return packet, nil
}
