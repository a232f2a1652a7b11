package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// PersistenceError is any failed read or write against the document store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err wraps a *PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// wrap turns gorm errors into this package's errors. Missing rows become ErrNotFound.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}
