package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perch-labs/noticeboard/internal/board"
	"github.com/perch-labs/noticeboard/internal/config"
	"github.com/perch-labs/noticeboard/internal/domain"
	httpserver "github.com/perch-labs/noticeboard/internal/http"
	"github.com/perch-labs/noticeboard/internal/journal"
	"github.com/perch-labs/noticeboard/internal/store"
	"github.com/perch-labs/noticeboard/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[noticeboard] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	recorder := journal.New(st)
	sinks := []board.EventSink{recorder}
	if cfg.WebhookURL != "" {
		notifier, err := webhook.NewNotifier(cfg.WebhookURL, cfg.WebhookAPIKey, time.Duration(cfg.WebhookTimeoutSecs)*time.Second, logger)
		if err != nil {
			log.Fatalf("init webhook notifier: %v", err)
		}
		sinks = append(sinks, notifier)
	}

	brd := board.New(board.Options{
		Admin:  domain.Principal(cfg.AdminPrincipal),
		Sink:   board.FanOut(sinks...),
		Logger: logger,
	})
	logger.Printf("board bootstrapped, admin capability held by %s", cfg.AdminPrincipal)

	server := httpserver.New(cfg, st, brd, recorder, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
