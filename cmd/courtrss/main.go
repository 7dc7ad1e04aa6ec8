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

	"github.com/samber/lo"

	"github.com/lysyi3m/courtrss/app/api"
	"github.com/lysyi3m/courtrss/app/cfg"
	"github.com/lysyi3m/courtrss/app/config"
	"github.com/lysyi3m/courtrss/app/database"
	"github.com/lysyi3m/courtrss/app/dedup"
	"github.com/lysyi3m/courtrss/app/feed"
	"github.com/lysyi3m/courtrss/app/logging"
	"github.com/lysyi3m/courtrss/app/notify"
	"github.com/lysyi3m/courtrss/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		// go-flags has already printed the parse error
		return 1
	}
	if appCfg == nil {
		return 0
	}

	logCloser, err := logging.Setup(logging.Config{Debug: appCfg.Debug, File: appCfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	monitorCfg, err := config.Resolve(appCfg)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	slog.Info("Starting CourtRSS",
		"version", appCfg.Version,
		"feeds", len(monitorCfg.RSSURLs),
		"keywords", len(monitorCfg.Keywords),
		"interval", monitorCfg.GetInterval().String(),
		"retries", monitorCfg.GetRetries(),
		"retry_interval", monitorCfg.GetRetryInterval().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal database.NotificationRepository
	var dispatcherJournal notify.Journal
	if appCfg.HistoryDB != "" {
		db, err := database.Open(appCfg.HistoryDB)
		if err != nil {
			slog.Error("Failed to open notification journal", "path", appCfg.HistoryDB, "error", err)
			return 1
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to migrate notification journal", "error", err)
			return 1
		}
		slog.Info("Notification journal ready", "path", appCfg.HistoryDB, "schema_version", version, "dirty", dirty)

		repo := database.NewNotificationRepository(db)
		journal = repo
		dispatcherJournal = repo
	}

	httpClient := &http.Client{}

	channels, desktop := buildChannels(monitorCfg.Notifications, httpClient, seconds(appCfg.WebhookTimeout))
	if desktop != nil {
		desktop.Start()
		defer desktop.Stop()
	}
	dispatcher := notify.NewDispatcher(channels, dispatcherJournal)

	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), appCfg.UserAgent, seconds(appCfg.FetchTimeout))
	sources := lo.Map(monitorCfg.RSSURLs, func(url string, _ int) feed.Source {
		return feed.Source{URL: url}
	})

	var scheduler tasks.SchedulerInterface = tasks.NewScheduler(
		sources,
		fetcher,
		feed.NewRetryPolicy(monitorCfg.GetRetries(), monitorCfg.GetRetryInterval()),
		feed.NewMatcher(monitorCfg.Keywords),
		dedup.NewStore(),
		dispatcher,
		monitorCfg.GetInterval(),
		appCfg.WorkerCount,
	)

	var httpServer *http.Server
	if appCfg.Port != "" {
		httpServer = &http.Server{
			Addr:         ":" + appCfg.Port,
			Handler:      api.NewServer(api.NewHandler(scheduler, journal, appCfg.Version), appCfg.APIAccessKey),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		go func() {
			slog.Info("Status API listening", "port", appCfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server error", "error", err)
				stop()
			}
		}()
	}

	fmt.Println("Monitoring RSS feeds... Press Ctrl+C to exit.")

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Scheduler stopped", "error", err)
	}

	slog.Info("Shutting down")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}

	return 0
}

func buildChannels(methods []config.NotifyMethod, httpClient *http.Client, webhookTimeout time.Duration) ([]notify.Channel, *notify.DesktopChannel) {
	var channels []notify.Channel
	var desktop *notify.DesktopChannel

	for _, method := range methods {
		switch method.Type {
		case config.MethodWindowNotification:
			if desktop != nil {
				continue
			}
			desktop = notify.NewDesktopChannel(notify.NewTerminalRenderer(os.Stdin, os.Stdout), notify.DefaultAlertQueueSize)
			channels = append(channels, desktop)
		case config.MethodDiscordWebhook:
			channels = append(channels, notify.NewWebhookChannel(method.WebhookURL, httpClient, webhookTimeout))
		}
	}

	return channels, desktop
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
