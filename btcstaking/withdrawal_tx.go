package btcstaking

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// decodeTimelock reads the CSV timelock back out of a script built by
// BuildTimelockScript: <pk> OP_CHECKSIGVERIFY <t> OP_CHECKSEQUENCEVERIFY.
// The third element (index 2) is either a small-int opcode (OP_1..OP_16) or
// a minimally-encoded CScriptNum data push.
func decodeTimelock(script []byte) (uint16, error) {
	const (
		elemPubKey = iota
		elemCheckSigVerify
		elemTimelock
		elemCheckSequenceVerify
		elemCount
	)

	tokenizer := txscript.MakeScriptTokenizer(0, script)

	var opcodes [elemCount]byte
	var datas [elemCount][]byte

	for i := 0; i < elemCount; i++ {
		if !tokenizer.Next() {
			return 0, fmt.Errorf(
				"script ended early at element %d: %w",
				i, ErrInvalidTimelockScript,
			)
		}
		opcodes[i] = tokenizer.Opcode()
		datas[i] = tokenizer.Data()
	}

	if tokenizer.Next() || tokenizer.Err() != nil {
		return 0, fmt.Errorf(
			"script has trailing data or parse error: %w",
			ErrInvalidTimelockScript,
		)
	}

	if opcodes[elemCheckSigVerify] != txscript.OP_CHECKSIGVERIFY ||
		opcodes[elemCheckSequenceVerify] != txscript.OP_CHECKSEQUENCEVERIFY {

		return 0, fmt.Errorf(
			"unexpected opcode shape: %w", ErrInvalidTimelockScript,
		)
	}

	timelockOp := opcodes[elemTimelock]

	if timelockOp >= txscript.OP_1 && timelockOp <= txscript.OP_16 {
		wrap := int(timelockOp) % 16
		if wrap == 0 {
			wrap = 16
		}
		return uint16(wrap), nil
	}

	if len(datas[elemTimelock]) > 0 {
		num, err := txscript.MakeScriptNum(datas[elemTimelock], true, 5)
		if err != nil {
			return 0, fmt.Errorf(
				"decoding timelock CScriptNum: %w: %v",
				ErrInvalidTimelockScript, err,
			)
		}
		if num < 0 || num > MaxTimelock {
			return 0, fmt.Errorf(
				"decoded timelock %d out of range: %w",
				int64(num), ErrInvalidTimelockScript,
			)
		}
		return uint16(num), nil
	}

	return 0, fmt.Errorf(
		"timelock element is neither a small-int opcode nor a data "+
			"push: %w", ErrInvalidTimelockScript,
	)
}

// WithdrawalTransaction is the generic spend-via-Tapscript-leaf builder
// shared by the post-timelock and post-unbonding withdrawal paths. It
// spends output_index of prevTx through spendLeafScript, proven against
// tree, and pays the full value less withdrawalFee to withdrawalAddress.
func WithdrawalTransaction(
	spendLeafScript []byte,
	tree *ScriptTree,
	prevTx *wire.MsgTx,
	withdrawalAddress string,
	withdrawalFee int64,
	netParams *chaincfg.Params,
	outputIndex uint32,
) (*psbt.Packet, error) {

	if withdrawalFee <= 0 {
		return nil, fmt.Errorf(
			"withdrawal fee must be positive: %w", ErrNonPositiveValue,
		)
	}
	if int(outputIndex) >= len(prevTx.TxOut) {
		return nil, fmt.Errorf(
			"output index %d out of range for prev tx with %d outputs",
			outputIndex, len(prevTx.TxOut),
		)
	}

	timelock, err := decodeTimelock(spendLeafScript)
	if err != nil {
		return nil, err
	}

	prevOut := prevTx.TxOut[outputIndex]

	addr, err := btcutil.DecodeAddress(withdrawalAddress, netParams)
	if err != nil {
		return nil, fmt.Errorf("decoding withdrawal address %q: %w",
			withdrawalAddress, err)
	}
	withdrawalPkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("building withdrawal output script: %w", err)
	}

	prevTxHash := prevTx.TxHash()

	unsignedTx := wire.NewMsgTx(2)
	txIn := wire.NewTxIn(wire.NewOutPoint(&prevTxHash, outputIndex), nil, nil)
	txIn.Sequence = uint32(timelock)
	unsignedTx.AddTxIn(txIn)

	unsignedTx.AddTxOut(wire.NewTxOut(
		prevOut.Value-withdrawalFee, withdrawalPkScript,
	))

	packet, err := psbt.NewFromUnsignedTx(unsignedTx)
	if err != nil {
		return nil, fmt.Errorf("initializing PSBT: %w", err)
	}

	controlBlock, err := tree.ControlBlock(spendLeafScript)
	if err != nil {
		return nil, fmt.Errorf("deriving control block: %w", err)
	}

	packet.Inputs[0].WitnessUtxo = &wire.TxOut{
		Value:    prevOut.Value,
		PkScript: prevOut.PkScript,
	}
	packet.Inputs[0].TaprootInternalKey = UnspendableInternalPubKey[:]
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
		ControlBlock: controlBlock,
		Script:       spendLeafScript,
		LeafVersion:  txscript.BaseLeafVersion,
	}}

	log.Debugf("built withdrawal psbt: timelock=%d value=%d fee=%d",
		timelock, prevOut.Value, withdrawalFee)

	return packet, nil
}

// WithdrawEarlyUnbondedTransaction spends the unbonding output's
// post-unbonding timelock path back to withdrawalAddress.
func WithdrawEarlyUnbondedTransaction(
	scripts *Scripts,
	prevTx *wire.MsgTx,
	withdrawalAddress string,
	withdrawalFee int64,
	netParams *chaincfg.Params,
	outputIndex uint32,
) (*psbt.Packet, error) {

	tree, err := BuildUnbondingOutputTree(scripts)
	if err != nil {
		return nil, fmt.Errorf("assembling unbonding output tree: %w", err)
	}

	return WithdrawalTransaction(
		scripts.UnbondingTimelockScript, tree, prevTx, withdrawalAddress,
		withdrawalFee, netParams, outputIndex,
	)
}

// WithdrawTimelockUnbondedTransaction spends the original staking output's
// post-staking-period timelock path back to withdrawalAddress.
func WithdrawTimelockUnbondedTransaction(
	scripts *Scripts,
	prevTx *wire.MsgTx,
	withdrawalAddress string,
	withdrawalFee int64,
	netParams *chaincfg.Params,
	outputIndex uint32,
) (*psbt.Packet, error) {

	tree, err := BuildStakingOutputTree(scripts)
	if err != nil {
		return nil, fmt.Errorf("assembling staking output tree: %w", err)
	}

	return WithdrawalTransaction(
		scripts.TimelockScript, tree, prevTx, withdrawalAddress,
		withdrawalFee, netParams, outputIndex,
	)
}
