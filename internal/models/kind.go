package models

import "fmt"

// Kind identifies one of the seven independently persisted user-state
// collections. The set is closed: both store adapters and the session
// manager switch exhaustively over these values, so adding or removing
// a kind is a compile-visible change in every dispatch site.
type Kind string

const (
	KindPlans        Kind = "plans"
	KindBookmarks    Kind = "bookmarks"
	KindBadges       Kind = "badges"
	KindMistakes     Kind = "mistakes"
	KindEarnedBadges Kind = "earnedBadges"
	KindQuizScore    Kind = "quizScore"
	KindTheme        Kind = "theme"
)

// AllKinds returns every collection kind in a stable order. The order
// matches the field order of the remote user document.
func AllKinds() []Kind {
	return []Kind{
		KindPlans,
		KindBookmarks,
		KindBadges,
		KindMistakes,
		KindEarnedBadges,
		KindQuizScore,
		KindTheme,
	}
}

func (k Kind) Valid() bool {
	switch k {
	case KindPlans, KindBookmarks, KindBadges, KindMistakes,
		KindEarnedBadges, KindQuizScore, KindTheme:
		return true
	}
	return false
}

// Key is the storage key for this kind: the local store row key and the
// remote document field path are the same string.
func (k Kind) Key() string {
	return string(k)
}

func (k Kind) String() string {
	return string(k)
}

// ErrUnknownKind reports a kind outside the closed set. Store adapters
// return it instead of silently writing an unexpected key.
func ErrUnknownKind(k Kind) error {
	return fmt.Errorf("unknown collection kind %q", string(k))
}
