package session

import (
	"quranstudy/internal/badges"
	"quranstudy/internal/models"
)

// listKinds are the collections reconciled with the "remote non-empty
// wins, otherwise promote local" rule. earnedBadges is excluded: it is
// recomputed from the merged badges list.
var listKinds = []models.Kind{
	models.KindPlans,
	models.KindBookmarks,
	models.KindBadges,
	models.KindMistakes,
}

// reconcile merges the anonymous local state into the remote profile
// after sign-in. Per kind, a non-empty remote value wins outright and
// the local value is discarded; an empty remote value is replaced by
// the local one. Values are never merged element-wise.
func reconcile(localCols, remoteCols models.Collections) models.Collections {
	merged := remoteCols.Clone()

	for _, k := range listKinds {
		if merged.IsEmpty(k) {
			_ = merged.Set(k, localCols.Get(k))
		}
	}

	if merged.QuizScore == 0 {
		merged.QuizScore = localCols.QuizScore
	}

	// Theme: a remote value, once set, wins even when it equals the
	// default; "" means never chosen.
	if merged.Theme == "" {
		if localCols.Theme.Valid() {
			merged.Theme = localCols.Theme
		} else {
			merged.Theme = models.ThemeLight
		}
	}

	merged.EarnedBadges = badges.DeriveEarned(merged.Badges)

	for _, k := range listKinds {
		if merged.IsEmpty(k) {
			_ = merged.Set(k, models.DefaultFor(k))
		}
	}

	return merged
}
