package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-digest/app/api"
	"github.com/lysyi3m/news-digest/app/cfg"
	"github.com/lysyi3m/news-digest/app/dashboard"
	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/identity"
	"github.com/lysyi3m/news-digest/app/source"
	"github.com/lysyi3m/news-digest/app/tasks"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if config == nil {
		return
	}

	setupLogger(config.Debug)

	slog.Info("Starting News Digest", "version", config.Version, "source", config.Source)

	httpClient := &http.Client{Timeout: config.FetchTimeout}

	var backend dashboard.AnnotationBackend
	if config.PersistAnnotations() {
		db, err := database.Open(config.DBPath)
		if err != nil {
			slog.Error("Failed to open database", "path", config.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database ready", "path", db.Path(), "version", version, "dirty", dirty)

		backend = database.NewAnnotationRepository(db)
	} else {
		slog.Info("Annotation persistence disabled, annotations last for the session")
	}

	sources, err := newSourceFactory(config, httpClient)
	if err != nil {
		slog.Error("Failed to configure article source", "error", err)
		os.Exit(1)
	}

	scheduler := tasks.NewScheduler(config.WorkerCount, tasks.DefaultQueueSize, config.FetchTimeout*2)
	registry := dashboard.NewRegistry(scheduler, sources, backend, config.PageSize, config.SessionTTL)

	if config.SessionTTL > 0 {
		scheduler.Every(time.Minute, func() []tasks.TaskInterface {
			return []tasks.TaskInterface{tasks.NewExpireSessionsTask(registry)}
		})
	}

	scheduler.Start()
	defer scheduler.Stop()
	defer registry.CloseAll()

	authClient := identity.NewClient(config.AuthURL, config.UserAgent, config.FetchTimeout, httpClient)
	handler := api.NewHandler(authClient, registry, config.Version)
	server := api.NewServer(handler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("News Digest shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

// newSourceFactory picks the article backend. Only the GraphQL source is
// scoped to the signed-in user's token.
func newSourceFactory(config *cfg.Cfg, httpClient *http.Client) (dashboard.SourceFactory, error) {
	switch config.Source {
	case cfg.SourceGraphQL:
		base := source.NewGraphQLSource(config.GraphQLURL, config.AdminSecret, config.UserAgent, config.FetchTimeout, httpClient, nil)
		return func(token source.TokenFunc) source.Source {
			return base.WithToken(token)
		}, nil

	case cfg.SourceFeed:
		feed := source.NewFeedSource(config.FeedURL, config.UserAgent, config.FetchTimeout, httpClient)
		return func(source.TokenFunc) source.Source { return feed }, nil

	case cfg.SourceFixture:
		fixture := source.NewFixtureSource(config.FixtureFile)
		return func(source.TokenFunc) source.Source { return fixture }, nil

	default:
		return nil, fmt.Errorf("unknown article source: %s", config.Source)
	}
}
