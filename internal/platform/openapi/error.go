package openapi

import (
	"errors"
	"fmt"
)

// APIError is the platform's logical error envelope: a non-zero code
// with a message, distinct from a transport-level failure.
type APIError struct {
	Action string
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: code=%d msg=%s", e.Action, e.Code, e.Msg)
}

// IsAPIError reports whether err wraps a platform error envelope.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
