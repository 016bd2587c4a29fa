package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"quranstudy/internal/models"
)

// ReadSurah fetches and prints a full surah with its translations, then
// awards the completion badge. Finishing the same surah twice is fine;
// the award is idempotent.
func (a *App) ReadSurah(ctx context.Context, arg string) error {
	num, err := strconv.Atoi(arg)
	if err != nil {
		printlnFn("Usage: read <surah number>")
		return err
	}

	surah, err := a.content.FetchSurah(ctx, num)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("=== %d. %s (%s), %d ayahs ===", surah.Number, surah.EnglishName, surah.Name, surah.AyahCount))
	for i, ayah := range surah.Arabic.Ayahs {
		printlnFn(fmt.Sprintf("[%d] %s", ayah.NumberInSurah, ayah.Text))
		for _, tr := range surah.Translations {
			if i < len(tr.Ayahs) {
				printlnFn("    " + tr.Ayahs[i].Text)
			}
		}
	}

	awarded, err := a.session.AwardBadge(ctx, surah.Number, surah.EnglishName)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if awarded {
		snap := a.session.Snapshot()
		for _, b := range snap.Badges {
			if b.SurahNum == surah.Number {
				printlnFn(fmt.Sprintf("Badge earned: %s %s", b.Medal, b.SurahName))
			}
		}
	}
	return nil
}

// defaultReciter is the audio edition used when none is named.
const defaultReciter = "ar.alafasy"

func (a *App) Reciters(ctx context.Context) error {
	editions, err := a.content.Editions(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	for _, e := range editions {
		printlnFn(fmt.Sprintf("%s: %s (%s)", e.Identifier, e.EnglishName, e.Language))
	}
	return nil
}

// AyahAudio prints the audio URL for a single ayah, identified by its
// global number (1..6236).
func (a *App) AyahAudio(ctx context.Context, arg, reciter string) error {
	num, err := strconv.Atoi(arg)
	if err != nil {
		printlnFn("Usage: audio <ayah number> [reciter]")
		return err
	}
	if reciter == "" {
		reciter = defaultReciter
	}

	url, err := a.content.AyahAudioURL(ctx, num, reciter)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(url)
	return nil
}

func (a *App) AddBookmark(ctx context.Context) error {
	surahNum, err := GetNumber(a.reader, "Surah number", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	ayahNum, err := GetNumber(a.reader, "Ayah number", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	surah, err := a.content.FetchSurah(ctx, surahNum)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if ayahNum < 1 || ayahNum > len(surah.Arabic.Ayahs) {
		printlnFn(fmt.Sprintf("Surah %s has %d ayahs", surah.EnglishName, surah.AyahCount))
		return fmt.Errorf("ayah out of range")
	}

	b := models.Bookmark{
		Surah:    surah.EnglishName,
		SurahNum: surah.Number,
		Ayah:     ayahNum,
		Text:     surah.Arabic.Ayahs[ayahNum-1].Text,
	}
	if err := a.session.AddBookmark(ctx, b); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Bookmarked.")
	return nil
}

func (a *App) ListBookmarks(ctx context.Context) error {
	bookmarks := a.session.Snapshot().Bookmarks
	if len(bookmarks) == 0 {
		printlnFn("No bookmarks yet.")
		return nil
	}
	for i, b := range bookmarks {
		printlnFn(fmt.Sprintf("%d. %s, ayah %d: %s", i+1, b.Surah, b.Ayah, b.Text))
	}
	return nil
}
