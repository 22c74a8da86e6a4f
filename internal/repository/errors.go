package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row addressed by id does not exist for the user.
var ErrNotFound = errors.New("not found")

// OpError wraps a failed store operation.
type OpError struct {
	Op       string
	Resource string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrap(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return &OpError{Op: op, Resource: resource, Err: err}
}
