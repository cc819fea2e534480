package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand means the command is not legal in the current state.
	// The session is left unchanged.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInvalidInput means a typed number (bid, price) is out of range.
	// The session is left unchanged.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig is returned by ConfigureSession and NewSession
	ErrInvalidConfig = errors.New("invalid session config")
)

func invalidCommand(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidCommand)
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
