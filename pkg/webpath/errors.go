package webpath

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a required string argument is empty
	// or consists only of whitespace.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNullReference is returned when a required handle argument is nil.
	ErrNullReference = errors.New("null reference")
)

func requireNonBlank(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty or whitespace", ErrInvalidArgument, name)
	}
	return nil
}

func nullReference(name string) error {
	return fmt.Errorf("%w: %s cannot be nil", ErrNullReference, name)
}
