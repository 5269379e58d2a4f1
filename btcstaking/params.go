package btcstaking

import "fmt"

// MaxTimelock is the largest value a staking or unbonding timelock may take;
// timelocks are encoded as a CScriptNum fed to OP_CHECKSEQUENCEVERIFY and are
// bounded so they always fit a u16.
const MaxTimelock = 65535

// StakingParameters is the immutable, validated input to the script builder.
// Callers construct one with NewStakingParameters; every field is read-only
// afterwards and every method on it is a pure function of the fields plus
// the fixed internal pubkey.
type StakingParameters struct {
	stakerKey            []byte
	finalityProviderKeys [][]byte
	covenantKeys         [][]byte
	covenantThreshold    uint32
	stakingTimelock      uint16
	unbondingTimelock    uint16
	magicBytes           []byte
}

// NewStakingParameters validates the given fields and returns an immutable
// StakingParameters value, or a wrapped error naming the first violated
// precondition.
//
// Exactly one finality provider key is used by the slashing path and the
// data-embed script (index 0); restaking to more than one provider is not
// supported, though the list type is preserved for forward compatibility.
func NewStakingParameters(
	stakerKey []byte,
	finalityProviderKeys [][]byte,
	covenantKeys [][]byte,
	covenantThreshold uint32,
	stakingTimelock uint16,
	unbondingTimelock uint16,
	magicBytes []byte,
) (*StakingParameters, error) {

	if len(stakerKey) == 0 || len(finalityProviderKeys) == 0 ||
		len(covenantKeys) == 0 || len(magicBytes) == 0 {

		return nil, fmt.Errorf(
			"staker key, finality provider keys, covenant keys, "+
				"and magic bytes are all required: %w",
			ErrMissingRequiredInput,
		)
	}

	if len(stakerKey) != PkLength {
		return nil, fmt.Errorf(
			"staker key must be %d bytes, got %d: %w",
			PkLength, len(stakerKey), ErrInvalidPublicKey,
		)
	}

	for i, fpKey := range finalityProviderKeys {
		if len(fpKey) != PkLength {
			return nil, fmt.Errorf(
				"finality provider key %d must be %d bytes, "+
					"got %d: %w",
				i, PkLength, len(fpKey), ErrInvalidPublicKey,
			)
		}
	}

	for i, covKey := range covenantKeys {
		if len(covKey) != PkLength {
			return nil, fmt.Errorf(
				"covenant key %d must be %d bytes, got %d: %w",
				i, PkLength, len(covKey), ErrInvalidPublicKey,
			)
		}
	}

	// Explicit range checks rather than a zero/falsy check: a threshold
	// or timelock of zero is protocol-illegal and should be rejected as
	// out of range, not treated as an "absent" field.
	if covenantThreshold < 1 || int(covenantThreshold) > len(covenantKeys) {
		return nil, fmt.Errorf(
			"covenant threshold %d must be between 1 and %d: %w",
			covenantThreshold, len(covenantKeys), ErrInvalidScriptData,
		)
	}

	if stakingTimelock < 1 || int(stakingTimelock) > MaxTimelock {
		return nil, fmt.Errorf(
			"staking timelock %d must be between 1 and %d: %w",
			stakingTimelock, MaxTimelock, ErrInvalidScriptData,
		)
	}

	if unbondingTimelock < 1 || int(unbondingTimelock) > MaxTimelock {
		return nil, fmt.Errorf(
			"unbonding timelock %d must be between 1 and %d: %w",
			unbondingTimelock, MaxTimelock, ErrInvalidScriptData,
		)
	}

	// Defensive copies: the caller's slices must not be able to mutate
	// this value after construction.
	params := &StakingParameters{
		stakerKey:         append([]byte(nil), stakerKey...),
		covenantThreshold: covenantThreshold,
		stakingTimelock:   stakingTimelock,
		unbondingTimelock: unbondingTimelock,
		magicBytes:        append([]byte(nil), magicBytes...),
	}

	params.finalityProviderKeys = make([][]byte, len(finalityProviderKeys))
	for i, k := range finalityProviderKeys {
		params.finalityProviderKeys[i] = append([]byte(nil), k...)
	}

	params.covenantKeys = make([][]byte, len(covenantKeys))
	for i, k := range covenantKeys {
		params.covenantKeys[i] = append([]byte(nil), k...)
	}

	return params, nil
}

// StakerKey returns the 32-byte staker public key.
func (p *StakingParameters) StakerKey() []byte {
	return p.stakerKey
}

// FinalityProviderKeys returns the ordered finality provider public keys.
func (p *StakingParameters) FinalityProviderKeys() [][]byte {
	return p.finalityProviderKeys
}

// CovenantKeys returns the covenant public keys, in the order supplied at
// construction (the script builder sorts its own working copy).
func (p *StakingParameters) CovenantKeys() [][]byte {
	return p.covenantKeys
}

// CovenantThreshold returns the number of covenant signatures required.
func (p *StakingParameters) CovenantThreshold() uint32 {
	return p.covenantThreshold
}

// StakingTimelock returns the staker's time-locked withdrawal timelock.
func (p *StakingParameters) StakingTimelock() uint16 {
	return p.stakingTimelock
}

// UnbondingTimelock returns the post-unbonding withdrawal timelock.
func (p *StakingParameters) UnbondingTimelock() uint16 {
	return p.unbondingTimelock
}

// MagicBytes returns the protocol identifier embedded in the data-embed
// script.
func (p *StakingParameters) MagicBytes() []byte {
	return p.magicBytes
}
