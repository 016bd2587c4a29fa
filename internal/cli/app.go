package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"quranstudy/internal/auth"
	"quranstudy/internal/config"
	"quranstudy/internal/content"
	"quranstudy/internal/logging"
	"quranstudy/internal/planner"
	"quranstudy/internal/quiz"
	"quranstudy/internal/session"
)

type App struct {
	config   *config.Config
	session  *session.Manager
	provider auth.Provider
	content  *content.Client
	planner  *planner.Planner
	log      logging.Logger
	reader   *bufio.Reader

	// Surah metadata is fetched once, on first use.
	surahs []content.SurahRef
	engine *quiz.Engine
}

func NewApp(c *config.Config, sess *session.Manager, provider auth.Provider, contentClient *content.Client, log logging.Logger) *App {
	return &App{
		config:   c,
		session:  sess,
		provider: provider,
		content:  contentClient,
		planner:  planner.New(sess),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
	}
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	printlnFn("Quran Study CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.Identity() != nil
}

func (a *App) getStatus() string {
	id := a.session.Identity()
	if id == nil {
		return "(anonymous)"
	}
	name := id.DisplayName
	if name == "" {
		name = id.Email
	}
	return fmt.Sprintf("(%s)", name)
}

func (a *App) loadSurahs(ctx context.Context) ([]content.SurahRef, error) {
	if a.surahs != nil {
		return a.surahs, nil
	}
	surahs, err := a.content.Meta(ctx)
	if err != nil {
		return nil, err
	}
	a.surahs = surahs
	return surahs, nil
}

func (a *App) quizEngine(ctx context.Context) (*quiz.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	surahs, err := a.loadSurahs(ctx)
	if err != nil {
		return nil, err
	}
	a.engine = quiz.NewEngine(surahs, a.session)
	return a.engine, nil
}
