package txsource

// transactionResponse is the subset of the mempool.space transaction
// resource this package needs to reconstruct a *wire.MsgTx.
type transactionResponse struct {
	TxID     string              `json:"txid"`
	Version  int32               `json:"version"`
	Locktime uint32              `json:"locktime"`
	Vin      []transactionInput  `json:"vin"`
	Vout     []transactionOutput `json:"vout"`
}

type transactionInput struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Sequence uint32 `json:"sequence"`
}

type transactionOutput struct {
	ScriptPubKey string `json:"scriptpubkey"`
	Value        int64  `json:"value"`
}
