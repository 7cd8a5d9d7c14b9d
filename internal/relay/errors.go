package relay

import (
	"errors"
	"fmt"
)

// ErrNoHost is returned when the index host cannot be determined
var ErrNoHost = errors.New("pinecone index host not resolved")

// StatusError is a non-2xx reply from Pinecone
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pinecone returned %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus exposes the status code to error classifiers
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}
