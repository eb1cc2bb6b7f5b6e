package travelwise_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMissingConfig      = errors.New("missing configuration")
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrInvalidRouteGroup  = errors.New("invalid route group")
	ErrListen             = errors.New("listener could not be opened")
	ErrNotImplemented     = errors.New("not implemented")
)

// Kind classifies a fatal startup failure.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindDatabase
	KindRouteMount
	KindListen
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindDatabase:
		return "database"
	case KindRouteMount:
		return "route_mount"
	case KindListen:
		return "listen"
	default:
		return "unknown"
	}
}

// sentinel returns the package-level error matched by errors.Is for k.
func (k Kind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrMissingConfig
	case KindDatabase:
		return ErrDatabaseConnection
	case KindRouteMount:
		return ErrInvalidRouteGroup
	case KindListen:
		return ErrListen
	default:
		return nil
	}
}

// StartupError is returned by the startup sequence. Every StartupError is terminal:
// the process exits with status 1.
type StartupError struct {
	Kind   Kind
	Module string
	Err    error
}

func (e *StartupError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s: module %q: %v", e.Kind, e.Module, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

func (e *StartupError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// ExitCode maps an error returned from startup to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
