package btcstaking

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// slashing_out + change_out + minimum_fee <= input.value.
func TestSlashingTransactionBalances(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildStakingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)

	sourceTx := fundingTx(100_000, pkScript)
	slashingAddr := regtestChangeAddress(t)

	packet, err := SlashingTransaction(
		tree, scripts.SlashingScript, sourceTx, slashingAddr, 0.1,
		scripts.UnbondingTimelockScript, 500,
		&chaincfg.RegressionNetParams, 0,
	)
	require.NoError(t, err)
	require.Len(t, packet.UnsignedTx.TxOut, 2)

	slashingOut := packet.UnsignedTx.TxOut[0].Value
	changeOut := packet.UnsignedTx.TxOut[1].Value
	require.EqualValues(t, 10_000, slashingOut)
	require.LessOrEqual(t, slashingOut+changeOut+500, int64(100_000))
}

func TestSlashingTransactionInsufficientFunds(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildStakingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)

	sourceTx := fundingTx(1_000, pkScript)
	slashingAddr := regtestChangeAddress(t)

	_, err = SlashingTransaction(
		tree, scripts.SlashingScript, sourceTx, slashingAddr, 0.5,
		scripts.UnbondingTimelockScript, 10_000,
		&chaincfg.RegressionNetParams, 0,
	)
	require.ErrorIs(t, err, ErrInsufficientFundsForSlashing)
}

func TestSlashingTransactionReadsOutputZeroRegardlessOfIndex(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildStakingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)

	sourceTx := fundingTx(100_000, pkScript)
	// A second output exists, but outputIndex only selects the spent
	// outpoint; value and witness UTXO still come from outputs[0] as
	// documented on SlashingTransaction.
	sourceTx.AddTxOut(wire.NewTxOut(1_234, pkScript))
	slashingAddr := regtestChangeAddress(t)

	packet, err := SlashingTransaction(
		tree, scripts.SlashingScript, sourceTx, slashingAddr, 0.1,
		scripts.UnbondingTimelockScript, 500,
		&chaincfg.RegressionNetParams, 1,
	)
	require.NoError(t, err)
	require.EqualValues(t, 100_000, packet.Inputs[0].WitnessUtxo.Value)
}

func TestSlashingTransactionNonPositiveRate(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildStakingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)
	sourceTx := fundingTx(100_000, pkScript)

	_, err = SlashingTransaction(
		tree, scripts.SlashingScript, sourceTx, regtestChangeAddress(t),
		0, scripts.UnbondingTimelockScript, 500,
		&chaincfg.RegressionNetParams, 0,
	)
	require.ErrorIs(t, err, ErrNonPositiveValue)
}
