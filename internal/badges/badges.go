// Package badges implements the achievement rules: one badge per
// completed surah, a deterministic medal symbol per surah, and the
// derived list of earned surah numbers.
package badges

import (
	"slices"

	"quranstudy/internal/models"
)

// medals is the fixed cycle of award symbols. With 114 surahs the table
// repeats roughly every 16 badges; the symbol is decoration, uniqueness
// lives in Badge.SurahNum.
var medals = [...]string{
	"🥇", "🥈", "🥉", "🏅", "🎖️", "🏆", "💎", "🌟",
	"🛡️", "⚡", "🔥", "💫", "🎯", "🏵️", "🎗️", "✨",
}

const fallbackMedal = "🏆"

// MedalFor returns the medal symbol for the given surah number.
func MedalFor(surahNum int) string {
	if surahNum < 1 {
		return fallbackMedal
	}
	return medals[(surahNum-1)%len(medals)]
}

// DeriveEarned recomputes the earned list from the badge list. This is
// the only way earnedBadges is ever produced.
func DeriveEarned(badges []models.Badge) []int {
	earned := make([]int, len(badges))
	for i, b := range badges {
		earned[i] = b.SurahNum
	}
	return earned
}

// Award appends a badge for the given surah unless one was already
// earned. The completion trigger can fire repeatedly for the same
// surah, so Award is idempotent: when awarded is false the inputs are
// returned unchanged.
func Award(surahNum int, surahName string, cur []models.Badge, earned []int) (newBadges []models.Badge, newEarned []int, awarded bool) {
	if slices.Contains(earned, surahNum) {
		return cur, earned, false
	}

	newBadges = append(slices.Clone(cur), models.Badge{
		SurahNum:  surahNum,
		SurahName: surahName,
		Medal:     MedalFor(surahNum),
	})
	return newBadges, DeriveEarned(newBadges), true
}
