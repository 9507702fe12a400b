package service

import "errors"

// Expected, caller-recoverable outcomes of queue operations. Handlers map
// these onto HTTP statuses; nothing here is fatal.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrTransient       = errors.New("transient failure")
)
