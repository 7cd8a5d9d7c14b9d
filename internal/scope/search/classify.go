package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind is the user-visible error category
type Kind string

// Error kinds
const (
	KindConfiguration Kind = "service_configuration_error"
	KindLimit         Kind = "service_limit_exceeded"
	KindTimeout       Kind = "search_timeout"
	KindInternal      Kind = "internal_server_error"
)

// Public messages
const (
	MsgConfiguration = "Search service configuration error"
	MsgAuth          = "Search service authentication failed"
	MsgTimeout       = "Search request took too long to complete. Please try again."
	MsgInternal      = "An unexpected error occurred while processing your search. Please try again later."
)

// LimitMessage is the apology shown when the backend quota is exhausted
func LimitMessage(contact string) string {
	return fmt.Sprintf("Too many users have been using this feature and we've hit the limit of our "+
		"free-tier backend services! Please take a break and try this feature again soon, "+
		"or contact %s with any other questions you might have.", contact)
}

// Failure is a classified search error. Err holds the cause for logs only.
type Failure struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ConfigurationFailure reports a deployment that cannot reach the backend
func ConfigurationFailure(err error) *Failure {
	return &Failure{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: MsgConfiguration, Err: err}
}

var (
	limitMarkers = []string{"RESOURCE_EXHAUSTED", "429", "quota", "rate limit"}
	authMarkers  = []string{"Unauthorized", "authentication", "401"}
)

// Classify maps a backend error onto the public taxonomy; the first matching
// rule wins: rate limit, timeout, authentication, then internal.
func Classify(err error, contact string) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	msg := markerText(err)
	status := statusOf(err)

	switch {
	case status == http.StatusTooManyRequests || containsAny(msg, limitMarkers):
		return &Failure{Kind: KindLimit, Status: http.StatusTooManyRequests, Message: LimitMessage(contact), Err: err}
	case isTimeout(err) || strings.Contains(msg, "timeout"):
		return &Failure{Kind: KindTimeout, Status: http.StatusGatewayTimeout, Message: MsgTimeout, Err: err}
	case status == http.StatusUnauthorized || containsAny(msg, authMarkers):
		return &Failure{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: MsgAuth, Err: err}
	default:
		return &Failure{Kind: KindInternal, Status: http.StatusInternalServerError, Message: MsgInternal, Err: err}
	}
}

// statusOf finds an HTTP status carried anywhere in the error chain
func statusOf(err error) int {
	var s interface{ HTTPStatus() int }
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return 0
}

// markerText is the part of err the substring rules may look at. Status errors
// carry the backend's own message. Transport errors name hosts, ports and
// durations, so for them only the timeout flag counts.
func markerText(err error) string {
	var s interface {
		error
		HTTPStatus() int
	}
	if errors.As(err, &s) {
		return s.Error()
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ""
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
