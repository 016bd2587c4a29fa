package cli

import (
	"context"
	"fmt"
	"os"

	"quranstudy/internal/models"
)

func (a *App) Quiz(ctx context.Context) error {
	engine, err := a.quizEngine(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	q, err := engine.Next()
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	answer, err := GetSimpleText(a.reader, q.Prompt, os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	correct, err := engine.Submit(ctx, q, answer)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if correct {
		printlnFn(fmt.Sprintf("Correct! Score: %d", a.session.Snapshot().QuizScore))
	} else {
		printlnFn(fmt.Sprintf("Wrong, the answer is %s.", q.Answer))
	}
	return nil
}

func (a *App) ListMistakes(ctx context.Context) error {
	mistakes := a.session.Snapshot().Mistakes
	if len(mistakes) == 0 {
		printlnFn("No mistakes, well done!")
		return nil
	}
	for i, m := range mistakes {
		printlnFn(fmt.Sprintf("%d. %s: you said %q, correct is %q", i+1, m.Question, m.Your, m.Correct))
	}
	return nil
}

func (a *App) ClearMistakes(ctx context.Context) error {
	if err := a.session.SaveData(ctx, models.KindMistakes, []models.Mistake{}); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Mistakes cleared.")
	return nil
}

func (a *App) ListBadges(ctx context.Context) error {
	badges := a.session.Snapshot().Badges
	if len(badges) == 0 {
		printlnFn("No badges yet. Read a full surah to earn one.")
		return nil
	}
	for _, b := range badges {
		printlnFn(fmt.Sprintf("%s %s (surah %d)", b.Medal, b.SurahName, b.SurahNum))
	}
	return nil
}

func (a *App) Score(ctx context.Context) error {
	printlnFn(fmt.Sprintf("Quiz score: %d", a.session.Snapshot().QuizScore))
	return nil
}
