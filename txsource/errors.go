package txsource

import "errors"

var (
	// ErrNotFound is returned when the backing indexer has no record of
	// the requested transaction.
	ErrNotFound = errors.New("transaction not found")

	// ErrMalformedResponse is returned when the indexer's response
	// cannot be reconstructed into a valid wire.MsgTx.
	ErrMalformedResponse = errors.New("malformed transaction response")
)
