package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/rishabhcli/CardGenie-sub007/internal/config"
	"github.com/rishabhcli/CardGenie-sub007/internal/highlight"
	"github.com/rishabhcli/CardGenie-sub007/internal/storage"
	"github.com/rishabhcli/CardGenie-sub007/internal/sync"
	"github.com/rishabhcli/CardGenie-sub007/internal/web"
)

func main() {
	flags := pflag.NewFlagSet("cardgenie", pflag.ExitOnError)
	configPath := flags.String("config", "cardgenie.yaml", "Path to the YAML config file")
	flags.String("db-path", config.Default().DBPath, "Path to the SQLite database file")
	flags.String("http-addr", config.Default().HTTPAddr, "Address for the HTTP API to listen on")
	flags.String("repos-dir", config.Default().ReposDir, "Directory where git sources are mirrored")
	addSource := flags.String("add-source", "", "Register a transcript source (local path or git URL) and exit")
	runSync := flags.Bool("sync", false, "Reconcile all sources before serving")
	serve := flags.Bool("serve", true, "Run the HTTP API server")
	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("Failed to parse flags", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database opened", "path", cfg.DBPath)

	if *addSource != "" {
		sourceType := web.SourceType(*addSource)
		id, err := db.InsertSource(*addSource, sourceType)
		if err != nil {
			slog.Error("Failed to add source", "path", *addSource, "error", err)
			os.Exit(1)
		}
		slog.Info("Source added", "id", id, "type", sourceType, "path", *addSource)
		return
	}

	if *runSync {
		runner := sync.NewRunner(db, highlight.NewScorer(cfg.Scorer), cfg.ReposDir)
		if err := runner.Run(); err != nil {
			slog.Error("Sync failed", "error", err)
			os.Exit(1)
		}
	}

	if !*serve {
		return
	}

	server := web.NewServer(db, cfg)
	slog.Info("Serving review API", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, server); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
