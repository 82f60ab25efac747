package llm

import (
	"fmt"
	"net/http"

	"github.com/sandevgo/chatgate/internal/core"
)

// StatusError is a non-200 reply from a backend. It unwraps to the
// matching core sentinel so callers can use errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusTooManyRequests:
		return core.ErrRateLimited
	// 529 is Anthropic's overloaded status.
	case http.StatusServiceUnavailable, 529:
		return core.ErrOverloaded
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return core.ErrBackendInternal
	default:
		return nil
	}
}
