// Package remote implements the authenticated-session store: one
// document per uid in a cloud document database. All subsequent writes
// are partial field updates; a full set happens exactly once, at
// signup.
package remote

import (
	"context"

	"quranstudy/internal/models"
)

// Store is the remote document capability. Exactly one implementation
// is selected at startup from configuration; callers never probe for
// availability at call sites.
type Store interface {
	// Get fetches the user's profile document. Absent documents yield
	// common.ErrNotFound.
	Get(ctx context.Context, uid string) (*models.UserProfile, error)

	// Create writes the initial profile document with every collection
	// at its default and a server-assigned createdAt. Used exactly once
	// per uid, at signup.
	Create(ctx context.Context, uid, displayName, email string) error

	// UpdateField partially updates exactly the named collection field
	// plus updatedAt, leaving all other fields untouched. Writing
	// badges also recomputes and writes earnedBadges in the same
	// request.
	UpdateField(ctx context.Context, uid string, k models.Kind, value any) error

	// Merge upserts the given collections into the document without
	// deleting fields it does not mention. Used only by reconciliation.
	Merge(ctx context.Context, uid string, c models.Collections) error

	// Subscribe registers a push listener for out-of-band document
	// changes. The returned stop function must be called on every exit
	// path; it is safe to call more than once.
	Subscribe(ctx context.Context, uid string, onChange func(*models.UserProfile, error)) (stop func(), err error)

	// Close releases the underlying client.
	Close() error
}
