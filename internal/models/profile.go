package models

import "time"

// UserProfile is the per-user remote document: identity fields plus the
// seven collections, one document per uid. CreatedAt is set once by the
// server at signup; UpdatedAt changes on every mutation. The embedded
// Collections struct is flattened by the Firestore codec, so the
// document fields match the storage keys of the collection kinds.
type UserProfile struct {
	UID         string    `json:"-" firestore:"-"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	Email       string    `json:"email" firestore:"email"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`

	Collections
}

// NewUserProfile returns a profile with all collections at their
// defaults, ready to be created at signup.
func NewUserProfile(uid, displayName, email string) *UserProfile {
	return &UserProfile{
		UID:         uid,
		DisplayName: displayName,
		Email:       email,
		Collections: DefaultCollections(),
	}
}

// Normalize fills nil collection slices with empty ones and defaults an
// unset theme. Remote documents written by older clients may omit
// fields entirely; the mirror never carries nils.
func (p *UserProfile) Normalize() {
	if p.Plans == nil {
		p.Plans = []Plan{}
	}
	if p.Bookmarks == nil {
		p.Bookmarks = []Bookmark{}
	}
	if p.Badges == nil {
		p.Badges = []Badge{}
	}
	if p.Mistakes == nil {
		p.Mistakes = []Mistake{}
	}
	if p.EarnedBadges == nil {
		p.EarnedBadges = []int{}
	}
	if p.Theme != "" && !p.Theme.Valid() {
		p.Theme = ThemeLight
	}
}
