package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"BollingerChart/internal/collector"
	"BollingerChart/internal/config"
	"BollingerChart/internal/model"
	"BollingerChart/internal/notifier"
	"BollingerChart/internal/pipeline"
	"BollingerChart/internal/recorder"
	"BollingerChart/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("load .env")
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(model.Stage(model.StageConfig, err))
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		fatal(model.Stage(model.StageConfig, err))
	}
	req, err := cfg.ChartRequest()
	if err != nil {
		fatal(model.Stage(model.StageConfig, err))
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "alphavantage":
		fetcher = collector.NewAlphaVantageFetcher(cfg.DataSource.APIKey, cfg.Proxy)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.WithField("source", fetcher.Name()).Info("data source selected")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	var n pipeline.Notifier
	if tn.Enabled() {
		n = tn
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(collector.NewCollector(fetcher), rec, n)

	if cfg.Schedule.Cron == "" {
		if _, err := p.Run(ctx, req); err != nil {
			rec.Close()
			fatal(err)
		}
		return
	}

	sched := scheduler.NewScheduler(ctx, p, rec, req)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		fatal(model.Stage(model.StageConfig, err))
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, rendering now")
		sched.TryRunAsync()
	}

	log.WithField("title", req.Title()).Info("waiting for schedule, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
}

func fatal(err error) {
	entry := log.WithError(err)
	var se *model.StageError
	if errors.As(err, &se) {
		entry = entry.WithField("stage", se.Stage)
	}
	entry.Error("chart run failed")
	os.Exit(1)
}
