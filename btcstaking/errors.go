package btcstaking

import "errors"

// Sentinel errors for the tagged error kinds of the staking protocol.
// Call sites wrap these with fmt.Errorf("...: %w", ErrX) so callers can
// still errors.Is against the sentinel while getting a descriptive message.
var (
	// ErrNonPositiveValue is returned when an amount, fee, or rate that
	// must be strictly positive is zero or negative.
	ErrNonPositiveValue = errors.New("value must be positive")

	// ErrInvalidChangeAddress is returned when a change address fails to
	// decode to a valid output script for the given network.
	ErrInvalidChangeAddress = errors.New("invalid change address")

	// ErrInvalidPublicKey is returned when a supplied public key is not
	// PkLength bytes.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidKeyLength is returned by the script builder when a
	// public key fed into a script template is not PkLength bytes.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInsufficientFunds is returned when input value is insufficient
	// to cover the staking amount plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientFundsForSlashing is returned when the slashing
	// transaction's computed staker residual would be zero or negative.
	ErrInsufficientFundsForSlashing = errors.New("insufficient funds for slashing")

	// ErrInvalidTimelockScript is returned when a script handed to the
	// withdrawal builder does not decompile into the expected
	// single-key-then-CSV shape.
	ErrInvalidTimelockScript = errors.New("invalid timelock script")

	// ErrNoKeys is returned when a multi-key script is built from an
	// empty key list.
	ErrNoKeys = errors.New("no keys supplied")

	// ErrThresholdTooLarge is returned when a signature threshold
	// exceeds the number of keys it is drawn from.
	ErrThresholdTooLarge = errors.New("threshold exceeds number of keys")

	// ErrDuplicateKeys is returned when a multi-key script's input
	// contains the same public key more than once.
	ErrDuplicateKeys = errors.New("duplicate keys")

	// ErrMissingRequiredInput is returned when a required
	// StakingParameters field is absent at construction time.
	ErrMissingRequiredInput = errors.New("missing required input")

	// ErrInvalidScriptData is returned for any other StakingParameters
	// post-validation failure.
	ErrInvalidScriptData = errors.New("invalid script data")
)
