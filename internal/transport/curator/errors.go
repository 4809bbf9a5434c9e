package curator

import (
	"fmt"
	"net/http"

	"github.com/kailas-cloud/curator/internal/domain/search/result"
)

// APIError is a non-2xx reply from the Curator API.
// Response is set when the body decoded as a search response.
type APIError struct {
	StatusCode int
	Status     string
	Body       []byte
	Response   *result.Response
}

func (e *APIError) Error() string {
	msg := e.Status
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Response != nil && e.Response.Status.StatusMsg != "" {
		return fmt.Sprintf("curator api error %d: %s: %s", e.StatusCode, msg, e.Response.Status.StatusMsg)
	}
	return fmt.Sprintf("curator api error %d: %s", e.StatusCode, msg)
}
