package btcstaking

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// StakingTransaction builds the PSBT that funds a staking output: one P2TR
// output over the staking script tree, an optional zero-value data-embed
// output, and an optional change output, spending the given UTXOs.
//
// Output ordering is fixed: [staking, data_embed?, change?].
func StakingTransaction(
	scripts *Scripts,
	amount int64,
	fee int64,
	changeAddress string,
	utxos []UTXO,
	netParams *chaincfg.Params,
	stakerXOnlyPK []byte,
	dataEmbedScript []byte,
) (*psbt.Packet, error) {

	if amount <= 0 || fee <= 0 {
		return nil, fmt.Errorf(
			"amount and fee must be positive: %w", ErrNonPositiveValue,
		)
	}

	changeAddr, err := btcutil.DecodeAddress(changeAddress, netParams)
	if err != nil {
		return nil, fmt.Errorf(
			"decoding change address %q: %w: %v",
			changeAddress, ErrInvalidChangeAddress, err,
		)
	}
	changePkScript, err := txscript.PayToAddrScript(changeAddr)
	if err != nil {
		return nil, fmt.Errorf(
			"building change output script: %w: %v",
			ErrInvalidChangeAddress, err,
		)
	}

	if stakerXOnlyPK != nil && len(stakerXOnlyPK) != PkLength {
		return nil, fmt.Errorf(
			"staker x-only pubkey must be %d bytes, got %d: %w",
			PkLength, len(stakerXOnlyPK), ErrInvalidPublicKey,
		)
	}

	var sumInputs int64
	for _, u := range utxos {
		sumInputs += u.Value
	}
	if sumInputs < amount+fee {
		return nil, fmt.Errorf(
			"inputs sum %d below amount+fee %d: %w",
			sumInputs, amount+fee, ErrInsufficientFunds,
		)
	}

	tree, err := BuildStakingOutputTree(scripts)
	if err != nil {
		return nil, fmt.Errorf("assembling staking script tree: %w", err)
	}
	stakingPkScript, err := tree.PkScript(netParams)
	if err != nil {
		return nil, fmt.Errorf("deriving staking output address: %w", err)
	}

	unsignedTx := wire.NewMsgTx(2)
	for _, u := range utxos {
		outPoint := wire.NewOutPoint(&u.Txid, u.Vout)
		unsignedTx.AddTxIn(wire.NewTxIn(outPoint, nil, nil))
	}

	unsignedTx.AddTxOut(wire.NewTxOut(amount, stakingPkScript))

	if dataEmbedScript != nil {
		unsignedTx.AddTxOut(wire.NewTxOut(0, dataEmbedScript))
	}

	change := sumInputs - amount - fee
	if change > 0 {
		unsignedTx.AddTxOut(wire.NewTxOut(change, changePkScript))
	}

	packet, err := psbt.NewFromUnsignedTx(unsignedTx)
	if err != nil {
		return nil, fmt.Errorf("initializing PSBT: %w", err)
	}

	for i, u := range utxos {
		packet.Inputs[i].WitnessUtxo = &wire.TxOut{
			Value:    u.Value,
			PkScript: u.PkScript,
		}
		if stakerXOnlyPK != nil {
			packet.Inputs[i].TaprootInternalKey = stakerXOnlyPK
		}
	}

	log.Debugf("built staking psbt: inputs=%d amount=%d fee=%d change=%d",
		len(utxos), amount, fee, change)

	return packet, nil
}
