package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"quranstudy/internal/models"
)

func (a *App) AddPlan(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Plan name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	surahNum, err := GetNumber(a.reader, "Surah number", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	pace, err := GetNumber(a.reader, "Ayahs per day", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	surah, err := a.content.FetchSurah(ctx, surahNum)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	plan := models.Plan{Name: name, SurahNum: surah.Number, SurahName: surah.EnglishName, Pace: pace}
	if err := a.planner.AddPlan(ctx, plan); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Plan added.")
	return nil
}

func (a *App) ListPlans(ctx context.Context) error {
	plans := a.session.Snapshot().Plans
	if len(plans) == 0 {
		printlnFn("No plans yet.")
		return nil
	}
	for i, p := range plans {
		printlnFn(fmt.Sprintf("%d. %s: %s, %d ayahs/day", i+1, p.Name, p.SurahName, p.Pace))
	}
	return nil
}

// DeletePlan takes the one-based number shown by ListPlans.
func (a *App) DeletePlan(ctx context.Context, arg string) error {
	num, err := strconv.Atoi(arg)
	if err != nil {
		printlnFn("Usage: delplan <plan number>")
		return err
	}

	if err := a.planner.DeletePlan(ctx, num-1); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Plan deleted.")
	return nil
}
