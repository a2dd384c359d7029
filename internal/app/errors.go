// Package app wires configuration, action modules and a host together.
package app

import "errors"

// Application errors.
var (
	// ErrClosed indicates an operation on a closed App.
	ErrClosed = errors.New("app is closed")

	// ErrNoHost indicates Options without a host.
	ErrNoHost = errors.New("no host")
)
