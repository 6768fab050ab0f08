package domain

import "errors"

var (
	// ErrInvalidAPIKey is returned when the data provider rejects the API key.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrInvalidInput covers every other lookup failure: unknown chain,
	// malformed address, missing token, unreachable provider.
	ErrInvalidInput = errors.New("invalid chain, contract address or token id")
)
