package invitekit

import "errors"

// Configuration errors
var (
	ErrMissingAPIID   = errors.New("invitekit: API ID is required")
	ErrMissingAPIHash = errors.New("invitekit: API hash is required")
	ErrMissingChannel = errors.New("invitekit: target channel is required")
	ErrBadBatchSize   = errors.New("invitekit: batch size must be positive")
	ErrBadDelay       = errors.New("invitekit: delay must not be negative")
)

// Runtime errors
var (
	ErrAlreadyRunning  = errors.New("invitekit: client is already running")
	ErrNotConnected    = errors.New("invitekit: client is not connected")
	ErrChannelNotFound = errors.New("invitekit: target channel not found")
	ErrNotAuthorized   = errors.New("invitekit: session is not authorized")
)
