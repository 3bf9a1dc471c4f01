package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palettekit/palette-api/internal/api"
	"github.com/palettekit/palette-api/internal/infrastructure/config"
	"github.com/palettekit/palette-api/internal/infrastructure/store"
	"github.com/palettekit/palette-api/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{Service: "palette-api"})
		fallback.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "palette-api",
		Pretty:  !cfg.IsProduction(),
	})

	st := store.New(cfg.DataFile, logger.Component("store"), store.Options{
		MaxFlushRetries: cfg.Store.MaxFlushRetries,
		FlushRetryDelay: cfg.Store.FlushRetryDelay,
	})

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = st.Load(loadCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DataFile).Msg("load document store")
	}

	e := api.NewRouter(cfg, st, log)
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
