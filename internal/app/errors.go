package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrClosed indicates the application has been shut down.
	ErrClosed = errors.New("application closed")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ComponentError reports a failure of a running component.
type ComponentError struct {
	Component string // Component name (e.g., "keymap", "script")
	Action    string // What the component was doing (e.g., "reload")
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *ComponentError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *ComponentError) Unwrap() error {
	return e.Err
}
