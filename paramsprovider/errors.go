package paramsprovider

import "errors"

var (
	// ErrNoParams is returned when the parameters API responds with no
	// versioned entries at all.
	ErrNoParams = errors.New("no staking parameters available")

	// ErrInvalidPubKeyHex is returned when a covenant key string is
	// neither 32 nor 33 bytes after hex decoding.
	ErrInvalidPubKeyHex = errors.New("invalid covenant public key encoding")

	// ErrStoreUnavailable is returned when the local cache store cannot
	// be opened or migrated.
	ErrStoreUnavailable = errors.New("parameter cache store unavailable")
)
