package btcstaking

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func regtestChangeAddress(t *testing.T) string {
	t.Helper()
	scripts := buildTestScripts(t)
	tree, err := BuildDegenerateTree(scripts.UnbondingTimelockScript)
	require.NoError(t, err)
	addr, err := tree.Address(&chaincfg.RegressionNetParams)
	require.NoError(t, err)
	return addr.String()
}

func oneUTXO(value int64) []UTXO {
	return []UTXO{{
		Txid:     chainhash.Hash{0x01},
		Vout:     0,
		PkScript: []byte{0x00, 0x14},
		Value:    value,
	}}
}

// A staking tx with surplus inputs gets a trailing change output.
func TestStakingTransactionWithChange(t *testing.T) {
	scripts := buildTestScripts(t)
	changeAddr := regtestChangeAddress(t)

	packet, err := StakingTransaction(
		scripts, 90_000, 500, changeAddr, oneUTXO(100_000),
		&chaincfg.RegressionNetParams, nil, nil,
	)
	require.NoError(t, err)
	require.Len(t, packet.UnsignedTx.TxIn, 1)
	require.Len(t, packet.UnsignedTx.TxOut, 2)
	require.EqualValues(t, 90_000, packet.UnsignedTx.TxOut[0].Value)
	require.EqualValues(t, 9_500, packet.UnsignedTx.TxOut[1].Value)
}

// An exact-balance staking tx with a data embed omits the change output.
func TestStakingTransactionWithDataEmbedNoChange(t *testing.T) {
	scripts := buildTestScripts(t)
	changeAddr := regtestChangeAddress(t)

	packet, err := StakingTransaction(
		scripts, 99_500, 500, changeAddr, oneUTXO(100_000),
		&chaincfg.RegressionNetParams, nil, scripts.DataEmbedScript,
	)
	require.NoError(t, err)
	require.Len(t, packet.UnsignedTx.TxOut, 2)
	require.EqualValues(t, 0, packet.UnsignedTx.TxOut[1].Value)
	require.Equal(t, scripts.DataEmbedScript, packet.UnsignedTx.TxOut[1].PkScript)
}

// Inputs below amount+fee are rejected before any PSBT is built.
func TestStakingTransactionInsufficientFunds(t *testing.T) {
	scripts := buildTestScripts(t)
	changeAddr := regtestChangeAddress(t)

	_, err := StakingTransaction(
		scripts, 90_000, 20_000, changeAddr, oneUTXO(100_000),
		&chaincfg.RegressionNetParams, nil, nil,
	)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestStakingTransactionNonPositiveValue(t *testing.T) {
	scripts := buildTestScripts(t)
	changeAddr := regtestChangeAddress(t)

	_, err := StakingTransaction(
		scripts, 0, 500, changeAddr, oneUTXO(100_000),
		&chaincfg.RegressionNetParams, nil, nil,
	)
	require.ErrorIs(t, err, ErrNonPositiveValue)
}

func TestStakingTransactionInvalidChangeAddress(t *testing.T) {
	scripts := buildTestScripts(t)

	_, err := StakingTransaction(
		scripts, 90_000, 500, "not-an-address", oneUTXO(100_000),
		&chaincfg.RegressionNetParams, nil, nil,
	)
	require.ErrorIs(t, err, ErrInvalidChangeAddress)
}

func TestStakingTransactionTapInternalKeyOnInputs(t *testing.T) {
	scripts := buildTestScripts(t)
	changeAddr := regtestChangeAddress(t)
	stakerPK := pk(0x01)

	packet, err := StakingTransaction(
		scripts, 90_000, 500, changeAddr, oneUTXO(100_000),
		&chaincfg.RegressionNetParams, stakerPK, nil,
	)
	require.NoError(t, err)
	require.Equal(t, stakerPK, packet.Inputs[0].TaprootInternalKey)
}

// sum(outputs) + fee == sum(inputs) for every successful staking tx.
func TestStakingTransactionBalances(t *testing.T) {
	scripts := buildTestScripts(t)
	changeAddr := regtestChangeAddress(t)
	const fee = 500

	packet, err := StakingTransaction(
		scripts, 90_000, fee, changeAddr, oneUTXO(100_000),
		&chaincfg.RegressionNetParams, nil, nil,
	)
	require.NoError(t, err)

	var sumOut int64
	for _, out := range packet.UnsignedTx.TxOut {
		sumOut += out.Value
	}
	require.EqualValues(t, 100_000, sumOut+fee)
}
