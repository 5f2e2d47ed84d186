package serialization

import "errors"

// Common errors.
var (
	ErrUnknownNetworkKind = errors.New("unknown network kind")
	ErrBadToken           = errors.New("malformed token")
	ErrTruncated          = errors.New("unexpected end of input")
)
