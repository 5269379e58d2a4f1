package btcstaking

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/txscript"
)

// Scripts holds the five scripts (four Tapscripts plus the OP_RETURN
// data-embed script) produced deterministically from a StakingParameters
// value.
type Scripts struct {
	// TimelockScript is the staker's post-staking-period withdrawal
	// path: <staker_key> OP_CHECKSIGVERIFY <staking_timelock> OP_CSV.
	TimelockScript []byte

	// UnbondingScript is the staker-plus-covenant-quorum path that
	// transitions the staking output into the shorter-timelock
	// unbonding output.
	UnbondingScript []byte

	// SlashingScript is the staker-plus-finality-provider-plus-covenant-
	// quorum path that diverts the staked value to a penalty address.
	SlashingScript []byte

	// UnbondingTimelockScript is the post-unbonding withdrawal path,
	// structurally identical to TimelockScript but over the unbonding
	// timelock.
	UnbondingTimelockScript []byte

	// DataEmbedScript is the OP_RETURN output identifying the staking
	// transaction on chain.
	DataEmbedScript []byte
}

// BuildScripts produces all five scripts from the receiver's parameters.
func (p *StakingParameters) BuildScripts() (*Scripts, error) {
	timelockScript, err := p.BuildStakingTimelockScript()
	if err != nil {
		return nil, fmt.Errorf("building staking timelock script: %w", err)
	}

	unbondingScript, err := p.BuildUnbondingScript()
	if err != nil {
		return nil, fmt.Errorf("building unbonding script: %w", err)
	}

	slashingScript, err := p.BuildSlashingScript()
	if err != nil {
		return nil, fmt.Errorf("building slashing script: %w", err)
	}

	unbondingTimelockScript, err := p.BuildUnbondingTimelockScript()
	if err != nil {
		return nil, fmt.Errorf("building unbonding timelock script: %w", err)
	}

	dataEmbedScript, err := p.BuildDataEmbedScript()
	if err != nil {
		return nil, fmt.Errorf("building data embed script: %w", err)
	}

	log.Debugf("built staking scripts: timelock=%d unbonding=%d "+
		"slashing=%d unbonding_timelock=%d data_embed=%d bytes",
		len(timelockScript), len(unbondingScript), len(slashingScript),
		len(unbondingTimelockScript), len(dataEmbedScript))

	return &Scripts{
		TimelockScript:          timelockScript,
		UnbondingScript:         unbondingScript,
		SlashingScript:          slashingScript,
		UnbondingTimelockScript: unbondingTimelockScript,
		DataEmbedScript:         dataEmbedScript,
	}, nil
}

// BuildTimelockScript emits:
//
//	<staker_key> OP_CHECKSIGVERIFY <t> OP_CHECKSEQUENCEVERIFY
//
// <t> is minimally encoded: OP_1..OP_16 for t in [1,16], otherwise a
// shortest-form little-endian CScriptNum, matching what Bitcoin Core's
// script compiler accepts.
func (p *StakingParameters) BuildTimelockScript(t uint16) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddData(p.stakerKey)
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	builder.AddInt64(int64(t))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)

	return builder.Script()
}

// BuildStakingTimelockScript builds the staker's post-staking-period
// withdrawal path over the staking timelock.
func (p *StakingParameters) BuildStakingTimelockScript() ([]byte, error) {
	return p.BuildTimelockScript(p.stakingTimelock)
}

// BuildUnbondingTimelockScript builds the post-unbonding withdrawal path
// over the (shorter) unbonding timelock.
func (p *StakingParameters) BuildUnbondingTimelockScript() ([]byte, error) {
	return p.BuildTimelockScript(p.unbondingTimelock)
}

// BuildUnbondingScript builds the staker-plus-covenant-quorum unbonding
// path: a verified staker signature followed by a covenant threshold
// multi-key check.
func (p *StakingParameters) BuildUnbondingScript() ([]byte, error) {
	stakerPart, err := singleKeyScript(p.stakerKey, true)
	if err != nil {
		return nil, err
	}

	covenantPart, err := multiKeyScript(p.covenantKeys, p.covenantThreshold, false)
	if err != nil {
		return nil, err
	}

	return append(stakerPart, covenantPart...), nil
}

// BuildSlashingScript builds the staker-plus-finality-provider-plus-
// covenant-quorum slashing path. Exactly one finality provider
// (finalityProviderKeys[0]) authorizes slashing; restaking to more than one
// provider is out of scope for this protocol.
func (p *StakingParameters) BuildSlashingScript() ([]byte, error) {
	stakerPart, err := singleKeyScript(p.stakerKey, true)
	if err != nil {
		return nil, err
	}

	fpPart, err := multiKeyScript(p.finalityProviderKeys[:1], 1, true)
	if err != nil {
		return nil, err
	}

	covenantPart, err := multiKeyScript(p.covenantKeys, p.covenantThreshold, false)
	if err != nil {
		return nil, err
	}

	script := append(stakerPart, fpPart...)
	return append(script, covenantPart...), nil
}

// dataEmbedVersion is the version byte embedded in the data-embed payload.
// Fixed at zero for the current protocol revision.
const dataEmbedVersion = 0x00

// BuildDataEmbedScript emits OP_RETURN over the concatenation:
//
//	magic_bytes || version(1) || staker_key(32) || fp_keys[0](32) ||
//	staking_timelock(u16 big-endian)
func (p *StakingParameters) BuildDataEmbedScript() ([]byte, error) {
	payload := make([]byte, 0, len(p.magicBytes)+1+PkLength+PkLength+2)
	payload = append(payload, p.magicBytes...)
	payload = append(payload, dataEmbedVersion)
	payload = append(payload, p.stakerKey...)
	payload = append(payload, p.finalityProviderKeys[0]...)

	var tlBytes [2]byte
	binary.BigEndian.PutUint16(tlBytes[:], p.stakingTimelock)
	payload = append(payload, tlBytes[:]...)

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_RETURN)
	builder.AddData(payload)

	return builder.Script()
}

// singleKeyScript assembles <pk> (OP_CHECKSIGVERIFY | OP_CHECKSIG).
func singleKeyScript(pk []byte, verify bool) ([]byte, error) {
	if len(pk) != PkLength {
		return nil, fmt.Errorf(
			"public key must be %d bytes, got %d: %w",
			PkLength, len(pk), ErrInvalidKeyLength,
		)
	}

	builder := txscript.NewScriptBuilder()
	builder.AddData(pk)

	if verify {
		builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	} else {
		builder.AddOp(txscript.OP_CHECKSIG)
	}

	return builder.Script()
}

// multiKeyScript builds a CHECKSIGADD-chain threshold script over pks,
// sorted into canonical ascending lexicographic order.
//
// Single-key lists degrade to singleKeyScript; everything else is:
//
//	<pk[0]> OP_CHECKSIG
//	<pk[1]> OP_CHECKSIGADD
//	...
//	<pk[n-1]> OP_CHECKSIGADD
//	<threshold> (OP_NUMEQUALVERIFY | OP_NUMEQUAL)
func multiKeyScript(pks [][]byte, threshold uint32, verify bool) ([]byte, error) {
	if len(pks) == 0 {
		return nil, ErrNoKeys
	}

	for i, pk := range pks {
		if len(pk) != PkLength {
			return nil, fmt.Errorf(
				"key %d must be %d bytes, got %d: %w",
				i, PkLength, len(pk), ErrInvalidKeyLength,
			)
		}
	}

	if int(threshold) > len(pks) {
		return nil, fmt.Errorf(
			"threshold %d exceeds %d keys: %w",
			threshold, len(pks), ErrThresholdTooLarge,
		)
	}

	if len(pks) == 1 {
		return singleKeyScript(pks[0], verify)
	}

	sorted := make([][]byte, len(pks))
	copy(sorted, pks)
	sort.Slice(sorted, func(i, j int) bool {
		return compareBytes(sorted[i], sorted[j]) < 0
	})

	for i := 1; i < len(sorted); i++ {
		if compareBytes(sorted[i-1], sorted[i]) == 0 {
			return nil, ErrDuplicateKeys
		}
	}

	builder := txscript.NewScriptBuilder()
	for i, pk := range sorted {
		builder.AddData(pk)
		if i == 0 {
			builder.AddOp(txscript.OP_CHECKSIG)
		} else {
			builder.AddOp(txscript.OP_CHECKSIGADD)
		}
	}

	builder.AddInt64(int64(threshold))
	if verify {
		builder.AddOp(txscript.OP_NUMEQUALVERIFY)
	} else {
		builder.AddOp(txscript.OP_NUMEQUAL)
	}

	return builder.Script()
}

// compareBytes implements ascending unsigned-byte lexicographic ordering.
// multiKeyScript sorts ascending; CreateWitness (witness.go) sorts
// descending over the same comparator. The two directions must not be
// confused.
func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
