package txsource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToMsgTxReconstructsInputsAndOutputs(t *testing.T) {
	resp := &transactionResponse{
		Version:  2,
		Locktime: 0,
		Vin: []transactionInput{
			{
				TxID:     repeatHex("01", 32),
				Vout:     0,
				Sequence: 0xffffffff,
			},
		},
		Vout: []transactionOutput{
			{ScriptPubKey: "5120" + repeatHex("ab", 32), Value: 90_000},
		},
	}

	tx, err := toMsgTx(resp)
	require.NoError(t, err)
	require.Len(t, tx.TxIn, 1)
	require.Len(t, tx.TxOut, 1)
	require.EqualValues(t, 90_000, tx.TxOut[0].Value)
	require.EqualValues(t, 0xffffffff, tx.TxIn[0].Sequence)
}

func TestToMsgTxRejectsBadScript(t *testing.T) {
	resp := &transactionResponse{
		Version: 2,
		Vout: []transactionOutput{
			{ScriptPubKey: "not-hex", Value: 1},
		},
	}

	_, err := toMsgTx(resp)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestTxidFromPath(t *testing.T) {
	require.Equal(t, "abc123", txidFromPath("/tx/abc123"))
	require.Equal(t, "/other/path", txidFromPath("/other/path"))
}

func repeatHex(pair string, n int) string {
	out := make([]byte, 0, len(pair)*n)
	for i := 0; i < n; i++ {
		out = append(out, pair...)
	}
	return string(out)
}
