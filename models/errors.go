package models

import (
	"errors"
)

var ErrNotFound = errors.New("not found")
var ErrUnauthenticated = errors.New("unauthenticated")
var ErrUnauthorized = errors.New("access denied")
var ErrValidation = errors.New("validation error")
var ErrStore = errors.New("store error")

// StoreError carries the backend failure message through unchanged.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return ErrStore.Error()
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
