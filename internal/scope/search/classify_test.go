package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string   { return e.msg }
func (e *statusErr) HTTPStatus() int { return e.code }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o deadline reached" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED: monthly read units"), KindLimit, http.StatusTooManyRequests},
		{"429 in message", errors.New("backend returned 429"), KindLimit, http.StatusTooManyRequests},
		{"quota", errors.New("quota exceeded for project"), KindLimit, http.StatusTooManyRequests},
		{"rate limit", errors.New("hit rate limit"), KindLimit, http.StatusTooManyRequests},
		{"429 status", &statusErr{code: 429, msg: "slow down"}, KindLimit, http.StatusTooManyRequests},
		{"429 beats timeout", errors.New("timeout after 429 from upstream"), KindLimit, http.StatusTooManyRequests},
		{"timeout in message", errors.New("Search request timeout"), KindTimeout, http.StatusGatewayTimeout},
		{"deadline exceeded", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout, http.StatusGatewayTimeout},
		{"net timeout", fmt.Errorf("dial: %w", timeoutErr{}), KindTimeout, http.StatusGatewayTimeout},
		{"unauthorized", errors.New("Unauthorized: invalid api key"), KindConfiguration, http.StatusInternalServerError},
		{"authentication", errors.New("authentication failed"), KindConfiguration, http.StatusInternalServerError},
		{"401 status", &statusErr{code: 401, msg: "nope"}, KindConfiguration, http.StatusInternalServerError},
		{"unknown", errors.New("connection reset by peer"), KindInternal, http.StatusInternalServerError},
		{"500 status", &statusErr{code: 500, msg: "boom"}, KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err, "ops@example.com")
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.status, f.Status)
			assert.ErrorIs(t, f, tt.err)
		})
	}
}

func TestClassifyMessages(t *testing.T) {
	f := Classify(errors.New("429"), "ops@example.com")
	assert.Contains(t, f.Message, "ops@example.com")
	assert.NotContains(t, f.Message, "429")

	f = Classify(errors.New("Unauthorized"), "")
	assert.Equal(t, MsgAuth, f.Message)

	f = Classify(errors.New("secret detail: key=abc"), "")
	assert.Equal(t, MsgInternal, f.Message)
	assert.NotContains(t, f.Message, "secret")
}

func TestClassifyKeepsFailure(t *testing.T) {
	orig := ConfigurationFailure(errors.New("no host"))
	f := Classify(fmt.Errorf("wrapped: %w", orig), "")
	require.Same(t, orig, f)
	assert.Equal(t, KindConfiguration, f.Kind)
	assert.Equal(t, MsgConfiguration, f.Message)
}

func TestClassifyIgnoresTransportText(t *testing.T) {
	refused := &url.Error{
		Op:  "Post",
		URL: "https://blog-a4291bc.svc.aped-4016-b74a.pinecone.io/records/namespaces/default/search",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
	}
	noHost := &net.DNSError{Err: "no such host", Name: "blog-429.svc.us-401.pinecone.io", IsNotFound: true}
	slow := &url.Error{
		Op:  "Post",
		URL: "https://blog-401ab.svc.pinecone.io/records",
		Err: timeoutErr{},
	}

	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"refused host with 429", fmt.Errorf("pinecone request failed: %w", refused), KindInternal},
		{"dns failure with 429 and 401", fmt.Errorf("pinecone request failed: %w", noHost), KindInternal},
		{"transport timeout with 401 in host", slow, KindTimeout},
		{"deadline with digits in wrap", fmt.Errorf("search request timeout after 429ms: %w", context.DeadlineExceeded), KindTimeout},
		{"status body still matched", fmt.Errorf("search: %w", &statusErr{code: 400, msg: "RESOURCE_EXHAUSTED: quota"}), KindLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Classify(tt.err, "").Kind)
		})
	}
}
