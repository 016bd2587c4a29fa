// Package models defines the user-state collections, the closed set of
// collection kinds, and the per-user profile document shared by the
// local and remote store adapters.
package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Theme is the UI color scheme. Anything else stored for the theme key
// is treated as malformed and falls back to ThemeLight.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Plan is one memorization plan entry.
type Plan struct {
	Name      string `json:"name" firestore:"name"`
	SurahNum  int    `json:"surahNum" firestore:"surahNum"`
	SurahName string `json:"surahName" firestore:"surahName"`
	Pace      int    `json:"pace" firestore:"pace"`
}

// Bookmark marks a single ayah. SurahNum may be zero on records written
// by older clients that only stored the surah name.
type Bookmark struct {
	Surah    string `json:"surah" firestore:"surah"`
	Ayah     int    `json:"ayah" firestore:"ayah"`
	Text     string `json:"text" firestore:"text"`
	SurahNum int    `json:"surahNum,omitempty" firestore:"surahNum,omitempty"`
}

// Badge is the completion award for one surah. SurahNum is unique
// across the list: one badge per surah, ever.
type Badge struct {
	SurahNum  int    `json:"surahNum" firestore:"surahNum"`
	SurahName string `json:"surahName" firestore:"surahName"`
	Medal     string `json:"medal" firestore:"medal"`
}

// Mistake is one wrong quiz answer. Text, SurahNum and AyahNum are only
// set by question types that reference a concrete ayah.
type Mistake struct {
	Question string `json:"question" firestore:"question"`
	Correct  string `json:"correct" firestore:"correct"`
	Your     string `json:"your" firestore:"your"`
	Text     string `json:"text,omitempty" firestore:"text,omitempty"`
	SurahNum int    `json:"surahNum,omitempty" firestore:"surahNum,omitempty"`
	AyahNum  int    `json:"ayahNum,omitempty" firestore:"ayahNum,omitempty"`
}

// Collections holds the in-memory values of all seven user-state
// collections. The session manager owns one instance as the mirror;
// both adapters read and write individual fields of it.
//
// EarnedBadges is derived: it is always recomputed from Badges and is
// never independently authoritative.
type Collections struct {
	Plans        []Plan     `json:"plans" firestore:"plans"`
	Bookmarks    []Bookmark `json:"bookmarks" firestore:"bookmarks"`
	Badges       []Badge    `json:"badges" firestore:"badges"`
	Mistakes     []Mistake  `json:"mistakes" firestore:"mistakes"`
	EarnedBadges []int      `json:"earnedBadges" firestore:"earnedBadges"`
	QuizScore    int        `json:"quizScore" firestore:"quizScore"`
	Theme        Theme      `json:"theme" firestore:"theme"`
}

// DefaultCollections returns the empty/default value for every kind:
// empty lists, zero score, light theme.
func DefaultCollections() Collections {
	return Collections{
		Plans:        []Plan{},
		Bookmarks:    []Bookmark{},
		Badges:       []Badge{},
		Mistakes:     []Mistake{},
		EarnedBadges: []int{},
		QuizScore:    0,
		Theme:        ThemeLight,
	}
}

// DefaultFor returns the kind-specific empty default.
func DefaultFor(k Kind) any {
	switch k {
	case KindPlans:
		return []Plan{}
	case KindBookmarks:
		return []Bookmark{}
	case KindBadges:
		return []Badge{}
	case KindMistakes:
		return []Mistake{}
	case KindEarnedBadges:
		return []int{}
	case KindQuizScore:
		return 0
	case KindTheme:
		return ThemeLight
	}
	return nil
}

// Get returns the current value for the given kind.
func (c *Collections) Get(k Kind) any {
	switch k {
	case KindPlans:
		return c.Plans
	case KindBookmarks:
		return c.Bookmarks
	case KindBadges:
		return c.Badges
	case KindMistakes:
		return c.Mistakes
	case KindEarnedBadges:
		return c.EarnedBadges
	case KindQuizScore:
		return c.QuizScore
	case KindTheme:
		return c.Theme
	}
	return nil
}

// Set replaces the value for the given kind. The value must be the
// kind's concrete type; anything else is rejected so a caller bug never
// reaches a store.
func (c *Collections) Set(k Kind, value any) error {
	switch k {
	case KindPlans:
		v, ok := value.([]Plan)
		if !ok {
			return wrongType(k, value)
		}
		c.Plans = v
	case KindBookmarks:
		v, ok := value.([]Bookmark)
		if !ok {
			return wrongType(k, value)
		}
		c.Bookmarks = v
	case KindBadges:
		v, ok := value.([]Badge)
		if !ok {
			return wrongType(k, value)
		}
		c.Badges = v
	case KindMistakes:
		v, ok := value.([]Mistake)
		if !ok {
			return wrongType(k, value)
		}
		c.Mistakes = v
	case KindEarnedBadges:
		v, ok := value.([]int)
		if !ok {
			return wrongType(k, value)
		}
		c.EarnedBadges = v
	case KindQuizScore:
		v, ok := value.(int)
		if !ok {
			return wrongType(k, value)
		}
		c.QuizScore = v
	case KindTheme:
		v, ok := value.(Theme)
		if !ok {
			return wrongType(k, value)
		}
		c.Theme = v
	default:
		return ErrUnknownKind(k)
	}
	return nil
}

func wrongType(k Kind, value any) error {
	return fmt.Errorf("collection %s: unexpected value type %T", k, value)
}

// IsEmpty reports whether the value for the given kind is the empty
// default. Reconciliation promotes local data only for kinds that are
// empty on the remote side.
func (c *Collections) IsEmpty(k Kind) bool {
	switch k {
	case KindPlans:
		return len(c.Plans) == 0
	case KindBookmarks:
		return len(c.Bookmarks) == 0
	case KindBadges:
		return len(c.Badges) == 0
	case KindMistakes:
		return len(c.Mistakes) == 0
	case KindEarnedBadges:
		return len(c.EarnedBadges) == 0
	case KindQuizScore:
		return c.QuizScore == 0
	case KindTheme:
		return c.Theme == ""
	}
	return true
}

// Clone returns a deep copy. The session manager hands clones to
// callers so UI reads never alias the mirror's slices.
func (c *Collections) Clone() Collections {
	return Collections{
		Plans:        slices.Clone(c.Plans),
		Bookmarks:    slices.Clone(c.Bookmarks),
		Badges:       slices.Clone(c.Badges),
		Mistakes:     slices.Clone(c.Mistakes),
		EarnedBadges: slices.Clone(c.EarnedBadges),
		QuizScore:    c.QuizScore,
		Theme:        c.Theme,
	}
}

// EncodeValue serializes a collection value as JSON text for the local
// store.
func EncodeValue(k Kind, value any) ([]byte, error) {
	if !k.Valid() {
		return nil, ErrUnknownKind(k)
	}
	return json.Marshal(value)
}

// DecodeValue deserializes JSON text into the kind's concrete type. A
// decode failure means the stored text is malformed; callers treat that
// the same as absent and fall back to DefaultFor.
func DecodeValue(k Kind, data []byte) (any, error) {
	switch k {
	case KindPlans:
		var v []Plan
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindBookmarks:
		var v []Bookmark
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindBadges:
		var v []Badge
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindMistakes:
		var v []Mistake
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindEarnedBadges:
		var v []int
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindQuizScore:
		var v int
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative quiz score %d", v)
		}
		return v, nil
	case KindTheme:
		var v Theme
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		if !v.Valid() {
			return nil, fmt.Errorf("unknown theme %q", string(v))
		}
		return v, nil
	}
	return nil, ErrUnknownKind(k)
}
