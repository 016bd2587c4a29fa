package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ReadSurah(ctx context.Context, arg string) error
	Reciters(ctx context.Context) error
	AyahAudio(ctx context.Context, arg, reciter string) error
	AddBookmark(ctx context.Context) error
	ListBookmarks(ctx context.Context) error
	AddPlan(ctx context.Context) error
	ListPlans(ctx context.Context) error
	DeletePlan(ctx context.Context, arg string) error
	Quiz(ctx context.Context) error
	ListMistakes(ctx context.Context) error
	ClearMistakes(ctx context.Context) error
	ListBadges(ctx context.Context) error
	Score(ctx context.Context) error
	SetTheme(ctx context.Context, arg string) error
	Profile(ctx context.Context) error
	SetName(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the study CLI.
//
// It reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// All study commands work anonymous; register/login only change where
// the state is persisted. Any errors returned by command handlers are
// ignored here; handlers print their own errors. This keeps the REPL
// loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("qs> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Study commands: read <n>, reciters, audio <n>, bookmark, bookmarks, addplan, plans, delplan <n>, quiz, mistakes, clearmistakes, badges, score, theme <light|dark>")
			if a.isLoggedIn() {
				printlnFn("Account commands: profile, setname, logout, exit")
			} else {
				printlnFn("Account commands: register, login, resetpw, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "resetpw":
			_ = a.ResetPassword(ctx)

		case "read":
			if len(args) == 0 {
				printlnFn("Usage: read <surah number>")
				continue
			}
			_ = a.ReadSurah(ctx, args[0])

		case "reciters":
			_ = a.Reciters(ctx)

		case "audio":
			if len(args) == 0 {
				printlnFn("Usage: audio <ayah number> [reciter]")
				continue
			}
			reciter := ""
			if len(args) > 1 {
				reciter = args[1]
			}
			_ = a.AyahAudio(ctx, args[0], reciter)

		case "bookmark":
			_ = a.AddBookmark(ctx)

		case "bookmarks":
			_ = a.ListBookmarks(ctx)

		case "addplan":
			_ = a.AddPlan(ctx)

		case "plans":
			_ = a.ListPlans(ctx)

		case "delplan":
			if len(args) == 0 {
				printlnFn("Usage: delplan <plan number>")
				continue
			}
			_ = a.DeletePlan(ctx, args[0])

		case "quiz":
			_ = a.Quiz(ctx)

		case "mistakes":
			_ = a.ListMistakes(ctx)

		case "clearmistakes":
			_ = a.ClearMistakes(ctx)

		case "badges":
			_ = a.ListBadges(ctx)

		case "score":
			_ = a.Score(ctx)

		case "theme":
			if len(args) == 0 {
				printlnFn("Usage: theme <light|dark>")
				continue
			}
			_ = a.SetTheme(ctx, args[0])

		case "profile":
			_ = a.Profile(ctx)

		case "setname":
			_ = a.SetName(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
