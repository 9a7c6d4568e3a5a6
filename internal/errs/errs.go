// Package errs holds the error kinds shared by the engine packages.
// Callers wrap them with fmt.Errorf("...: %w", errs.ErrX) and test with errors.Is.
package errs

import "errors"

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrUnsupported       = errors.New("unsupported")
	ErrIO                = errors.New("i/o error")
	ErrFormat            = errors.New("format error")
)
