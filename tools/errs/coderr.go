package errs

import (
	"errors"
	"strconv"
	"strings"
)

// CodeError carries a stable numeric code next to the message so that
// callers can branch without string matching.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return e.Code == ce.Code
}

// Shared codes for the gateway and its storage layer.
var (
	ErrCacheUnavailable = NewCodeError(1001, "cache unavailable")
	ErrNotFound         = NewCodeError(1002, "record not found")
	ErrBadEnvelope      = NewCodeError(1101, "malformed envelope")
	ErrUnknownType      = NewCodeError(1102, "unknown message type")
)
