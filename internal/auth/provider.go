// Package auth defines the authentication capability consumed by the
// session manager, and its Firebase Identity Toolkit implementation.
package auth

import (
	"context"
	"fmt"
	"strings"

	"quranstudy/internal/common"
)

// MinPasswordLen matches the signup form rule of the original app.
const MinPasswordLen = 6

// Identity is the authenticated user. A nil *Identity means anonymous.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

// Provider is the auth capability. Identity-change callbacks fire once
// with the current identity at registration time, then on every sign-in
// and sign-out, with nil meaning anonymous.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	UpdateDisplayName(ctx context.Context, displayName string) (*Identity, error)

	// Current returns the identity as of now, nil when anonymous.
	Current() *Identity

	// OnChange registers fn for identity changes. fn is invoked
	// synchronously with the current identity before OnChange returns.
	OnChange(fn func(*Identity))
}

// Validation below runs before any network call; failures are
// user-visible messages, not provider errors.

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: please enter a valid email address", common.ErrValidation)
	}
	return nil
}

func validateSignUp(email, password, displayName string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLen)
	}
	if strings.TrimSpace(displayName) == "" {
		return fmt.Errorf("%w: please enter a display name", common.ErrValidation)
	}
	return nil
}

func validateSignIn(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: please enter a password", common.ErrValidation)
	}
	return nil
}
