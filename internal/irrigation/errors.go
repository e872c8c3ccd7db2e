package irrigation

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport marks failures where no response was received.
	ErrTransport = errors.New("transport failure")
	// ErrDecode marks responses whose body could not be decoded.
	ErrDecode = errors.New("malformed response")
	// ErrNotFound matches a StatusError carrying 404.
	ErrNotFound = errors.New("not found")
)

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Kind classifies an error returned by the access layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// KindOf returns the failure kind of err. A nil error is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
