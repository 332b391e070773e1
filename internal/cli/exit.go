package cli

import (
	"errors"

	"github.com/vk/spadequery/internal/app"
	"github.com/vk/spadequery/internal/transport"
)

// Exit codes.
const (
	CodeFailure      = 1
	CodeUsage        = 2
	CodeNoConnection = -1
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Classify maps an application error to the exit code it should produce.
func Classify(err error) error {
	var exitErr *ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return exitErr
	case errors.Is(err, transport.ErrSessionEstablishment):
		return &ExitError{Code: CodeNoConnection, Message: "Error connecting to SPADE: " + err.Error()}
	case errors.Is(err, app.ErrConfig):
		return &ExitError{Code: CodeUsage, Message: err.Error()}
	default:
		return &ExitError{Code: CodeFailure, Message: err.Error()}
	}
}
