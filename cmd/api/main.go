// Package main implements the HTTP API server for site search.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/dsjohal14/sitesearch/internal/http"
	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/dsjohal14/sitesearch/internal/libs/obs"
	"github.com/dsjohal14/sitesearch/internal/relay"
	"github.com/dsjohal14/sitesearch/internal/scope/search"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel, cfg.Env)
	logger := obs.Logger("api")

	if missing := cfg.MissingBackend(); len(missing) > 0 {
		// Not fatal: /search answers service_configuration_error until fixed
		logger.Warn().Strs("missing", missing).Msg("search backend is not configured")
	}

	backend := relay.New(cfg.Pinecone, obs.Logger("relay"), nil)
	orch := search.New(backend, cfg.Search, obs.Logger("search"))
	handler := apihttp.NewHandler(orch, cfg, logger)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           apihttp.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		// leave room for the search deadline plus response encoding
		WriteTimeout: cfg.Search.Timeout + 5*time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", addr).
			Str("preset", cfg.Preset).
			Int("top_k", cfg.Search.TopK).
			Bool("rerank", cfg.Search.RerankEnabled).
			Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Search.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
