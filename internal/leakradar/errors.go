package leakradar

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

const (
	KindHTTP Kind = iota
	KindTransport
	KindAuth
	KindQuota
	KindNotFound
	KindValidation
	KindBadRequest
	KindDecode
)

var (
	ErrTransport  = errors.New("leakradar: transport failure")
	ErrAuth       = errors.New("leakradar: authentication failed")
	ErrQuota      = errors.New("leakradar: plan or quota restriction")
	ErrNotFound   = errors.New("leakradar: not found")
	ErrValidation = errors.New("leakradar: validation failed")
	ErrBadRequest = errors.New("leakradar: bad request")
	ErrDecode     = errors.New("leakradar: malformed response")
	ErrHTTP       = errors.New("leakradar: http error")
)

// Error is returned by every Client call that fails.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Detail  string
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "leakradar request failed"
	}
	var b strings.Builder
	b.WriteString("leakradar ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch e.Kind {
	case KindTransport:
		if e.Timeout {
			b.WriteString("request timed out")
		} else {
			b.WriteString("request failed")
		}
	case KindDecode:
		b.WriteString("cannot decode response")
	default:
		fmt.Fprintf(&b, "http %d", e.Status)
	}
	if d := strings.TrimSpace(e.Detail); d != "" {
		b.WriteString(" - ")
		b.WriteString(d)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match on the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return kindSentinel(e.Kind) == target
}

func kindSentinel(k Kind) error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindAuth:
		return ErrAuth
	case KindQuota:
		return ErrQuota
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindBadRequest:
		return ErrBadRequest
	case KindDecode:
		return ErrDecode
	default:
		return ErrHTTP
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case 400:
		return KindBadRequest
	case 401:
		return KindAuth
	case 403:
		return KindQuota
	case 404:
		return KindNotFound
	case 422:
		return KindValidation
	default:
		return KindHTTP
	}
}

// AsError extracts the *Error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
