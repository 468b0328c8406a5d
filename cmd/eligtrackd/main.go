package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/openelig/eligibility-tracker/internal/common"
	"github.com/openelig/eligibility-tracker/internal/export"
	"github.com/openelig/eligibility-tracker/internal/extract"
	"github.com/openelig/eligibility-tracker/internal/ingest"
	"github.com/openelig/eligibility-tracker/internal/notify"
	"github.com/openelig/eligibility-tracker/internal/ocr"
	"github.com/openelig/eligibility-tracker/internal/pipeline"
	"github.com/openelig/eligibility-tracker/internal/repository"
	"github.com/openelig/eligibility-tracker/internal/sentiment"
	"github.com/openelig/eligibility-tracker/internal/server"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Record store: Postgres when hosted, daily workbooks locally
	var store repository.RecordStore
	switch cfg.Database.Backend {
	case "postgres":
		pool, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, slog.Default())
		if err != nil {
			log.Fatalf("creating DB pool: %v", err)
		}
		defer pool.Close()
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, slog.Default()); err != nil {
			log.Fatalf("DB health failed: %v", err)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensuring schema: %v", err)
		}
		store = repository.NewPostgresStore(pool, slog.Default())
		log.Infow("record store ready", "backend", "postgres")
	case "workbook":
		ws, err := export.NewWorkbookStore(cfg.Database.OutputDir, slog.Default())
		if err != nil {
			log.Fatalf("creating workbook store: %v", err)
		}
		store = ws
		log.Infow("record store ready", "backend", "workbook", "dir", cfg.Database.OutputDir)
	}

	// Seen-message index
	dedup, err := repository.OpenDedupStore(cfg.Database.DedupPath, slog.Default())
	if err != nil {
		log.Fatalf("opening dedup store: %v", err)
	}
	defer dedup.Close()

	// Sentiment lexicon (optional override file)
	lexicon := sentiment.DefaultLexicon()
	if cfg.Extractor.LexiconPath != "" {
		lexicon, err = sentiment.LoadLexicon(cfg.Extractor.LexiconPath)
		if err != nil {
			log.Fatalf("loading sentiment lexicon: %v", err)
		}
		log.Infow("sentiment lexicon loaded", "path", cfg.Extractor.LexiconPath)
	}
	extractor := extract.NewExtractor(sentiment.NewClassifier(lexicon))

	// OCR API (optional)
	ocrClient := ocr.NewClient(cfg.OCR.APIURL, cfg.OCR.Timeout, slog.Default())
	if ocrClient.Enabled() {
		log.Infow("OCR client ready", "url", cfg.OCR.APIURL)
	} else {
		log.Warn("OCR_API_URL not set, image messages will use caption text only")
	}

	// Notifications (optional)
	var publisher *notify.Publisher
	if cfg.Notify.NatsURL != "" {
		publisher, err = notify.Connect(cfg.Notify.NatsURL, cfg.Notify.NatsToken, slog.Default())
		if err != nil {
			log.Fatalf("connecting to NATS: %v", err)
		}
		defer publisher.Close()
		log.Infow("NATS connected", "url", cfg.Notify.NatsURL)
	}

	proc := pipeline.NewProcessor(slog.Default(), extractor, ocrClient, store, dedup, publisher)

	// Drop-folder watcher (optional)
	if len(cfg.Ingest.WatchDirs) > 0 {
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Ingest.WatchDirs,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}, slog.Default())
		if err != nil {
			log.Fatalf("starting watcher: %v", err)
		}
		ing := ingest.NewIngestor(proc, cfg.Extractor.Identity, slog.Default())
		go ing.Run(ctx, paths)
		go func() {
			for range errs {
			}
		}()
		log.Infow("drop-folder watcher running", "dirs", cfg.Ingest.WatchDirs)
	}

	hub := server.NewHub(cfg.Server.HistoryLimit, slog.Default())
	exporter := export.NewService(store, slog.Default())
	srv := server.NewServer(cfg.Server.Addr, hub, proc, store, exporter, cfg.Extractor.Identity, slog.Default())

	go func() {
		if err := srv.Serve(ctx); err != nil {
			log.Fatalf("http serve: %v", err)
		}
	}()
	log.Infof("serving on %s", cfg.Server.Addr)

	<-ctx.Done()
	log.Info("shutting down...")
	fmt.Println("stopped.")
}
