package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/soochol/flowcanvas/internal/api"
	"github.com/soochol/flowcanvas/internal/config"
	"github.com/soochol/flowcanvas/internal/db"
	"github.com/soochol/flowcanvas/internal/repository"
	"github.com/soochol/flowcanvas/internal/storage"
	"github.com/soochol/flowcanvas/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("flowcanvas v0.1.0")
	fmt.Println("Usage: flowcanvas serve")
}

func serve() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		drafts   repository.DraftRepository
		versions repository.VersionRepository
	)
	memDrafts := repository.NewMemoryDrafts()
	memVersions := repository.NewMemoryVersions()
	drafts, versions = memDrafts, memVersions

	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database error", "err", err)
			os.Exit(1)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			slog.Error("migration error", "err", err)
			os.Exit(1)
		}
		drafts = repository.NewPersistentDrafts(memDrafts, database)
		versions = repository.NewPersistentVersions(memVersions, database)
		slog.Info("using postgres persistence")
	} else {
		slog.Info("using in-memory persistence")
	}

	versionSvc := version.NewService(versions, drafts, cfg.Versions.Retention())
	if err := versionSvc.StartRetention(); err != nil {
		slog.Error("retention scheduler error", "err", err)
		os.Exit(1)
	}
	defer versionSvc.Stop()

	srv := api.NewServer(drafts)
	srv.SetVersionService(versionSvc)

	if store, err := storage.NewLocalStorage(cfg.Storage.Dir); err != nil {
		slog.Warn("file storage unavailable", "err", err)
	} else {
		srv.SetStorage(store)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting flowcanvas server", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
