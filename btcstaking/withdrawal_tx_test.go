package btcstaking

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestDecodeTimelockSmallOpcode(t *testing.T) {
	p := validParams(t)
	script, err := p.BuildTimelockScript(16)
	require.NoError(t, err)

	tl, err := decodeTimelock(script)
	require.NoError(t, err)
	require.Equal(t, uint16(16), tl)
}

func TestDecodeTimelockOneIsSmallOpcode(t *testing.T) {
	p := validParams(t)
	script, err := p.BuildTimelockScript(1)
	require.NoError(t, err)

	tl, err := decodeTimelock(script)
	require.NoError(t, err)
	require.Equal(t, uint16(1), tl)
}

func TestDecodeTimelockCScriptNum(t *testing.T) {
	p := validParams(t)
	script, err := p.BuildTimelockScript(1000)
	require.NoError(t, err)

	tl, err := decodeTimelock(script)
	require.NoError(t, err)
	require.Equal(t, uint16(1000), tl)
}

func TestDecodeTimelockRejectsWrongShape(t *testing.T) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_TRUE)
	script, err := builder.Script()
	require.NoError(t, err)

	_, err = decodeTimelock(script)
	require.ErrorIs(t, err, ErrInvalidTimelockScript)
}

func fundingTx(value int64, pkScript []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(wire.NewTxOut(value, pkScript))
	return tx
}

func TestWithdrawTimelockUnbondedTransaction(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildStakingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)

	prevTx := fundingTx(90_000, pkScript)
	withdrawalAddr := regtestChangeAddress(t)

	packet, err := WithdrawTimelockUnbondedTransaction(
		scripts, prevTx, withdrawalAddr, 500,
		&chaincfg.RegressionNetParams, 0,
	)
	require.NoError(t, err)

	// Version 2 and sequence = decoded timelock, required for CSV.
	require.EqualValues(t, 2, packet.UnsignedTx.Version)
	require.EqualValues(t, 144, packet.UnsignedTx.TxIn[0].Sequence)
	require.EqualValues(t, 89_500, packet.UnsignedTx.TxOut[0].Value)
	require.Len(t, packet.Inputs[0].TaprootLeafScript, 1)
	require.Equal(t, scripts.TimelockScript,
		packet.Inputs[0].TaprootLeafScript[0].Script)
}

func TestWithdrawEarlyUnbondedTransaction(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildUnbondingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)

	prevTx := fundingTx(50_000, pkScript)
	withdrawalAddr := regtestChangeAddress(t)

	packet, err := WithdrawEarlyUnbondedTransaction(
		scripts, prevTx, withdrawalAddr, 300,
		&chaincfg.RegressionNetParams, 0,
	)
	require.NoError(t, err)
	require.EqualValues(t, 72, packet.UnsignedTx.TxIn[0].Sequence)
	require.EqualValues(t, 49_700, packet.UnsignedTx.TxOut[0].Value)
}

func TestWithdrawalTransactionNonPositiveFee(t *testing.T) {
	scripts := buildTestScripts(t)
	tree, err := BuildStakingOutputTree(scripts)
	require.NoError(t, err)
	pkScript, err := tree.PkScript(&chaincfg.RegressionNetParams)
	require.NoError(t, err)
	prevTx := fundingTx(90_000, pkScript)

	_, err = WithdrawTimelockUnbondedTransaction(
		scripts, prevTx, regtestChangeAddress(t), 0,
		&chaincfg.RegressionNetParams, 0,
	)
	require.ErrorIs(t, err, ErrNonPositiveValue)
}
