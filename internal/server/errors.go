package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrListenerFailed       = errors.New("failed to create listener")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrUnknownAction        = errors.New("unknown action")
)
