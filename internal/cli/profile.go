package cli

import (
	"context"
	"fmt"
	"os"

	"quranstudy/internal/models"
)

func (a *App) Profile(ctx context.Context) error {
	snap := a.session.Snapshot()

	id := a.session.Identity()
	if id == nil {
		printlnFn("Anonymous session (progress is stored on this device only)")
	} else {
		printlnFn(fmt.Sprintf("%s <%s>", id.DisplayName, id.Email))
	}

	printlnFn(fmt.Sprintf("Theme: %s", snap.Theme))
	printlnFn(fmt.Sprintf("Quiz score: %d", snap.QuizScore))
	printlnFn(fmt.Sprintf("Badges: %d, bookmarks: %d, plans: %d", len(snap.Badges), len(snap.Bookmarks), len(snap.Plans)))
	return nil
}

func (a *App) SetTheme(ctx context.Context, arg string) error {
	theme := models.Theme(arg)
	if !theme.Valid() {
		printlnFn("Usage: theme <light|dark>")
		return fmt.Errorf("unknown theme %q", arg)
	}

	if err := a.session.SaveData(ctx, models.KindTheme, theme); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Theme set to", arg)
	return nil
}

func (a *App) SetName(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter new display name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	id, err := a.provider.UpdateDisplayName(ctx, name)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Display name updated to", id.DisplayName)
	return nil
}
