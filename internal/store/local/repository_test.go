package local

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quranstudy/internal/logging"
	"quranstudy/internal/models"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS user_state (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRepository(db, log)
}

func TestRepository_DefaultsWhenAbsent(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	assert.Equal(t, []models.Plan{}, r.Read(ctx, models.KindPlans))
	assert.Equal(t, []models.Bookmark{}, r.Read(ctx, models.KindBookmarks))
	assert.Equal(t, 0, r.Read(ctx, models.KindQuizScore))
	assert.Equal(t, models.ThemeLight, r.Read(ctx, models.KindTheme))
}

func TestRepository_RoundTrip(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	tests := []struct {
		kind  models.Kind
		value any
	}{
		{models.KindPlans, []models.Plan{{Name: "p", SurahNum: 2, SurahName: "Al-Baqarah", Pace: 3}}},
		{models.KindBookmarks, []models.Bookmark{{Surah: "Al-Fatiha", Ayah: 1, Text: "...", SurahNum: 1}}},
		{models.KindMistakes, []models.Mistake{{Question: "q", Correct: "a", Your: "b"}}},
		{models.KindQuizScore, 6},
		{models.KindTheme, models.ThemeDark},
	}

	for _, tc := range tests {
		r.Write(ctx, tc.kind, tc.value)
		assert.Equal(t, tc.value, r.Read(ctx, tc.kind), "kind %s", tc.kind)
	}
}

func TestRepository_BadgesWriteAlsoWritesEarned(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	list := []models.Badge{
		{SurahNum: 1, SurahName: "Al-Fatiha", Medal: "🥇"},
		{SurahNum: 2, SurahName: "Al-Baqarah", Medal: "🥈"},
	}
	r.Write(ctx, models.KindBadges, list)

	assert.Equal(t, list, r.Read(ctx, models.KindBadges))
	assert.Equal(t, []int{1, 2}, r.Read(ctx, models.KindEarnedBadges))
}

func TestRepository_MalformedValueFallsBackToDefault(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	_, err := r.db.Exec(`INSERT INTO user_state (key, value) VALUES ('plans', '{broken'), ('theme', '"sepia"'), ('quizScore', '-3')`)
	require.NoError(t, err)

	assert.Equal(t, []models.Plan{}, r.Read(ctx, models.KindPlans))
	assert.Equal(t, models.ThemeLight, r.Read(ctx, models.KindTheme))
	assert.Equal(t, 0, r.Read(ctx, models.KindQuizScore))
}

func TestRepository_ReadAll(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	r.Write(ctx, models.KindQuizScore, 4)
	r.Write(ctx, models.KindTheme, models.ThemeDark)

	c := r.ReadAll(ctx)
	assert.Equal(t, 4, c.QuizScore)
	assert.Equal(t, models.ThemeDark, c.Theme)
	assert.Empty(t, c.Plans)
	assert.Empty(t, c.Bookmarks)
}

func TestRepository_DeviceIDIsStable(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	id := r.DeviceID(ctx)
	require.NotEmpty(t, id)
	assert.Equal(t, id, r.DeviceID(ctx))
}
