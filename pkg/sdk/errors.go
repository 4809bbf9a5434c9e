package curator

import (
	"github.com/kailas-cloud/curator/internal/domain"
	transport "github.com/kailas-cloud/curator/internal/transport/curator"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCollectionRequired = domain.ErrCollectionRequired
	ErrInvalidBaseURL     = domain.ErrInvalidBaseURL
	ErrTransport          = domain.ErrTransport
	ErrDecodeResponse     = domain.ErrDecodeResponse
)

// APIError is returned for non-2xx replies. Use errors.As() to inspect it.
type APIError = transport.APIError
