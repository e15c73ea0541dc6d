package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyChain is returned when a chain is configured without actions.
	ErrEmptyChain = errors.New("chain has no actions")

	// ErrIndexOutOfRange is returned when a configured step index does not exist.
	ErrIndexOutOfRange = errors.New("action index out of range")

	// ErrUnknownActionType is returned when no factory is registered for an action type.
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrNoTransactionManager is returned when a chain needs a new transaction handle but cannot create one.
	ErrNoTransactionManager = errors.New("no transaction manager configured")

	// ErrTransactionClosed is returned when a committed or rolled back handle is used again.
	ErrTransactionClosed = errors.New("transaction already closed")

	// ErrChainNotFound is returned when a chain definition cannot be found in a repository.
	ErrChainNotFound = errors.New("chain not found")

	// ErrNoRowWriter is returned when an action needs to write through a handle that cannot.
	ErrNoRowWriter = errors.New("transaction does not support row writes")
)

// ConfigurationError reports an invalid chain configuration.
// It is raised before any action runs or any transaction is created.
type ConfigurationError struct {
	Field  string // Configuration path, e.g. "use_result_of_action" or "actions[1].chain.actions"
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
	Err    error  // Sentinel for errors.Is
}

func (e *ConfigurationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid chain configuration: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid chain configuration: field %q: %s (got %v)", e.Field, e.Reason, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ActionError is the error the built-in actions fail with.
// The engine never inspects it; callers receive it exactly as returned.
type ActionError struct {
	Action string
	Reason string
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("action %q failed: %s: %v", e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("action %q failed: %s", e.Action, e.Reason)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
