package domain

import "errors"

var (
	// ErrCollectionRequired signals an empty collection ID.
	ErrCollectionRequired = errors.New("collection id is required")
	// ErrInvalidBaseURL signals a malformed Curator endpoint.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrTransport signals a failed HTTP round trip (dial, timeout, cancellation).
	ErrTransport = errors.New("curator transport error")
	// ErrDecodeResponse signals a response body that is not a search response.
	ErrDecodeResponse = errors.New("decode search response")
)
