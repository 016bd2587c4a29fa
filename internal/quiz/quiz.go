// Package quiz generates surah-number questions from the content
// metadata and records outcomes through the session manager.
package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"quranstudy/internal/common"
	"quranstudy/internal/content"
	"quranstudy/internal/models"
)

// Saver is the slice of the session manager the quiz needs.
type Saver interface {
	Snapshot() models.Collections
	SaveData(ctx context.Context, k models.Kind, value any) error
}

// Question asks for the english name of a surah given its number.
type Question struct {
	Prompt   string
	SurahNum int
	Answer   string
}

// Check reports whether the given answer matches, ignoring case and
// surrounding whitespace.
func (q Question) Check(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.Answer))
}

type Engine struct {
	surahs []content.SurahRef
	saver  Saver
	intN   func(n int) int
}

func NewEngine(surahs []content.SurahRef, saver Saver) *Engine {
	return &Engine{surahs: surahs, saver: saver, intN: rand.IntN}
}

// Next picks a random surah and builds its question.
func (e *Engine) Next() (Question, error) {
	if len(e.surahs) == 0 {
		return Question{}, fmt.Errorf("%w: no surah metadata loaded", common.ErrInternal)
	}
	s := e.surahs[e.intN(len(e.surahs))]
	return Question{
		Prompt:   fmt.Sprintf("Which Surah has number %d?", s.Number),
		SurahNum: s.Number,
		Answer:   s.EnglishName,
	}, nil
}

// Submit grades the answer and persists the outcome: a correct answer
// increments the quiz score, a wrong one appends a mistake entry.
func (e *Engine) Submit(ctx context.Context, q Question, answer string) (bool, error) {
	snap := e.saver.Snapshot()

	if q.Check(answer) {
		return true, e.saver.SaveData(ctx, models.KindQuizScore, snap.QuizScore+1)
	}

	mistakes := append(snap.Mistakes, models.Mistake{
		Question: q.Prompt,
		Correct:  q.Answer,
		Your:     strings.TrimSpace(answer),
		SurahNum: q.SurahNum,
	})
	return false, e.saver.SaveData(ctx, models.KindMistakes, mistakes)
}

// ClearMistakes empties the mistake log.
func (e *Engine) ClearMistakes(ctx context.Context) error {
	return e.saver.SaveData(ctx, models.KindMistakes, []models.Mistake{})
}
