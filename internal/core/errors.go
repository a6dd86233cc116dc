package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrValidation    = errors.New("validation failed")
	ErrStorage       = errors.New("storage failure")
)

// NotFoundError reports an operation on a nonexistent id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// DuplicateNameError reports a violated unique-name constraint.
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s named %q already exists", e.Entity, e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

func NewDuplicateNameError(entity, name string) error {
	return &DuplicateNameError{Entity: entity, Name: name}
}

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps an underlying persistence failure. It is fatal to the
// operation, never to the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError wraps err unless it already carries a domain error, in
// which case it is returned unchanged.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsDuplicateName(err) || IsValidation(err) || IsStorage(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsDuplicateName(err error) bool { return errors.Is(err, ErrDuplicateName) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsStorage(err error) bool       { return errors.Is(err, ErrStorage) }
