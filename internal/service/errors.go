package service

import "errors"

// ErrNotFound marks a missing referenced entity; handlers map it to 404.
var ErrNotFound = errors.New("resource not found")

// ValidationError covers malformed input and business-rule rejections that
// the caller can correct; handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func badRequest(msg string) error {
	return &ValidationError{Msg: msg}
}
