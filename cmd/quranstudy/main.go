package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"quranstudy/internal/auth"
	"quranstudy/internal/buildinfo"
	"quranstudy/internal/cli"
	"quranstudy/internal/config"
	"quranstudy/internal/content"
	"quranstudy/internal/logging"
	"quranstudy/internal/session"
	"quranstudy/internal/store/local"
	"quranstudy/internal/store/remote"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	var logger logging.Logger = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	db, err := local.InitDatabase(ctx, cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer db.Close()

	repo := local.NewRepository(db, logger)
	logger = logger.With("deviceId", repo.DeviceID(ctx))

	var remoteStore remote.Store
	if cfg.ProjectID != "" {
		fs, err := remote.NewFirestoreStore(ctx, cfg.ProjectID, cfg.CredentialsFile, logger)
		if err != nil {
			log.Fatalf("error connecting to remote store: %v", err)
		}
		defer fs.Close()
		remoteStore = fs
	} else {
		logger.Warn(ctx, "no project id configured, running local-only")
		remoteStore = remote.NewDisabledStore()
	}

	provider := auth.NewFirebaseProvider(cfg.AuthAPIKey, cfg.AuthEndpoint, logger)

	opts := []session.Option{}
	if cfg.Watch {
		opts = append(opts, session.WithRealtime())
	}
	sess := session.NewManager(provider, repo, remoteStore, logger, opts...)
	sess.Start(ctx)
	defer sess.Close()

	contentClient := content.NewClient(cfg.ContentAPIBaseURL, cfg.ContentTimeout, logger)

	app := cli.NewApp(cfg, sess, provider, contentClient, logger)
	app.Run(ctx)
}
