// Package cli provides the interactive Quran study command-line client.
//
// It wires configuration, the session manager, and the content API into
// an interactive REPL. Typical flow: start anonymous, read surahs and
// earn badges, then register or log in to carry the progress over to
// the cloud profile.
//
// Key features:
//   - Register / Login / Logout / password reset
//   - Read surahs with translations, earning completion badges
//   - Bookmarks, memorization plans, quiz with mistake log
//
// The REPL is started via App.Run(ctx), which blocks until the user
// exits. See App and runREPL for details.
package cli
