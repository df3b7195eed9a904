package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"applyflow-engine/internal/ai"
	"applyflow-engine/internal/ai/gemini"
	"applyflow-engine/internal/cards"
	"applyflow-engine/internal/config"
	"applyflow-engine/internal/dedup"
	"applyflow-engine/internal/events"
	"applyflow-engine/internal/extract"
	"applyflow-engine/internal/fetch"
	"applyflow-engine/internal/httpapi"
	"applyflow-engine/internal/logger"
	"applyflow-engine/internal/pipeline"
	"applyflow-engine/internal/secrets"
	"applyflow-engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Engine data dir: env wins (a desktop shell can pass one), else local.
	dataDir := os.Getenv("APPLYFLOW_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}

	zl, err := logger.New(cfg.App.LogJSON, cfg.App.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()

	db, err := store.Open(filepath.Join(dataDir, "applyflow.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	client := fetch.NewClient(fetch.Config{
		Timeout:     cfg.FetchTimeout(),
		MaxRetries:  cfg.Fetch.MaxRetries,
		Backoff:     cfg.FetchBackoff(),
		UserAgent:   cfg.Fetch.UserAgent,
		HostReqsSec: cfg.Fetch.HostReqsSec,
		HostBurst:   cfg.Fetch.HostBurst,
	}, log)

	engine := dedup.NewEngine(db.Pool, log)

	var cardCreator cards.Creator
	if cfg.Cards.Enabled && cfg.Cards.BaseURL != "" {
		cardCreator = cards.NewClient(cfg.Cards.BaseURL, cfg.Cards.Token)
	}

	var letterWriter ai.LetterWriter
	if cfg.Letters.Enabled {
		apiKey, kerr := secrets.GetGeminiAPIKey(cfg.Letters.KeyringAccount)
		if kerr != nil {
			log.Warnw("letters disabled", "reason", kerr)
		} else {
			gen, gerr := gemini.NewGenerator(context.Background(), apiKey, cfg.Letters.Model)
			if gerr != nil {
				log.Warnw("letters disabled", "reason", gerr)
			} else {
				letterWriter = gen
			}
		}
	}

	hub := events.NewHub()
	pl := pipeline.New(extract.New(client, log), engine, cardCreator, letterWriter, log)

	mux := httpapi.NewMux(httpapi.Deps{
		Pipeline: pl,
		Engine:   engine,
		Hub:      hub,
		Log:      log,
	})

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover(log),
		httpapi.AccessLog(log),
	)

	port := cfg.App.Port
	if port == 0 {
		port = 38471
	}
	addr := net.JoinHostPort("127.0.0.1", fmt.Sprint(port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("engine listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}
