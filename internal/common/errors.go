// Package common defines shared sentinel errors used across the
// storage, auth, and session layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound          = errors.New("not found")
	ErrRemote            = errors.New("remote store error")
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// User-facing errors. ErrValidation blocks the initiating action
	// before any store call; ErrAuth carries the provider's message
	// verbatim.
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("auth error")

	ErrInternal = errors.New("internal error")
)
