package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/notexe/motivator/internal/api"
	"github.com/notexe/motivator/internal/bounded"
)

// Kind classifies why a gateway call failed.
type Kind string

const (
	KindAuthInvalid Kind = "auth_invalid"
	KindRateLimited Kind = "rate_limited"
	KindUnparseable Kind = "unparseable"
	KindNetwork     Kind = "network"
	KindUnknown     Kind = "unknown"
)

// GatewayError is the only error type returned by Gateway methods.
type GatewayError struct {
	Kind Kind
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ai gateway %s: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UserMessage is a short explanation suitable for the front ends.
func (e *GatewayError) UserMessage() string {
	switch e.Kind {
	case KindAuthInvalid:
		return "the AI API key is missing or invalid"
	case KindRateLimited:
		return "the AI quota is exhausted, try again later"
	case KindUnparseable:
		return "the AI answer could not be understood"
	case KindNetwork:
		return "the AI service could not be reached"
	default:
		return "the AI request failed"
	}
}

func unparseable(format string, args ...any) *GatewayError {
	return &GatewayError{Kind: KindUnparseable, Err: fmt.Errorf(format, args...)}
}

// classify maps provider and transport errors to a GatewayError.
func classify(err error) *GatewayError {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return &GatewayError{Kind: classifyStatus(statusErr), Err: err}
	}

	if errors.Is(err, bounded.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Kind: KindNetwork, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &GatewayError{Kind: KindNetwork, Err: err}
	}

	return &GatewayError{Kind: classifyText(err.Error()), Err: err}
}

func classifyStatus(e *api.StatusError) Kind {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return KindAuthInvalid
	case e.StatusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case strings.Contains(e.Message, "API_KEY_INVALID"):
		return KindAuthInvalid
	case strings.Contains(strings.ToLower(e.Message), "quota"):
		return KindRateLimited
	}
	return KindUnknown
}

// classifyText handles SDK errors that only carry the status in their text.
func classifyText(msg string) Kind {
	msg = strings.ToLower(msg)
	switch {
	case containsAny(msg, "401", "403", "authentication", "api key", "api_key_invalid", "unauthorized"):
		return KindAuthInvalid
	case containsAny(msg, "429", "rate limit", "quota", "insufficient balance"):
		return KindRateLimited
	case containsAny(msg, "connection refused", "no such host", "timeout", "eof", "connection reset"):
		return KindNetwork
	}
	return KindUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
