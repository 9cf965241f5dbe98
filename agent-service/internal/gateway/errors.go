package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

type ErrorKind string

const (
	KindUnavailable      ErrorKind = "UNAVAILABLE"
	KindEndpointNotFound ErrorKind = "ENDPOINT_NOT_FOUND"
	KindRemoteError      ErrorKind = "REMOTE_ERROR"
	KindUnknown          ErrorKind = "UNKNOWN"
)

// GatewayError is the only error Invoke returns for a request that was sent.
type GatewayError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Body       string
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindUnavailable:
		return fmt.Sprintf("model runner unavailable at %s: %v", e.URL, e.Err)
	case KindEndpointNotFound:
		return fmt.Sprintf("model runner endpoint not found: %s", e.URL)
	case KindRemoteError:
		return fmt.Sprintf("model runner returned %d: %s", e.StatusCode, e.Body)
	default:
		if e.Err != nil {
			return fmt.Sprintf("model runner call failed: %s: %v", e.Message, e.Err)
		}
		return fmt.Sprintf("model runner call failed: %s", e.Message)
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of a gateway error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return ""
}

func transportError(url string, err error) *GatewayError {
	if isUnavailable(err) {
		return &GatewayError{Kind: KindUnavailable, URL: url, Err: err}
	}
	return &GatewayError{Kind: KindUnknown, URL: url, Message: "transport error", Err: err}
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
