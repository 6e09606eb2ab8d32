package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lucasenlucas/undercover-bluff/internal/catalog"
	"github.com/lucasenlucas/undercover-bluff/internal/config"
	"github.com/lucasenlucas/undercover-bluff/internal/feed"
	"github.com/lucasenlucas/undercover-bluff/internal/handlers"
	"github.com/lucasenlucas/undercover-bluff/internal/room"
	"github.com/lucasenlucas/undercover-bluff/internal/store"
	"github.com/lucasenlucas/undercover-bluff/internal/store/sqlite"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var roomStore store.RoomStore
	if cfg.DatabasePath != "" {
		db, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open store")
		}
		defer db.Close()
		roomStore = db
		log.Info().Str("path", cfg.DatabasePath).Msg("using sqlite store")
	} else {
		roomStore = store.NewMemory()
		log.Info().Msg("using in-memory store")
	}

	var changeFeed feed.Feed
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
		}
		defer client.Close()
		changeFeed = feed.NewRedis(client)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis feed")
	} else {
		changeFeed = feed.NewMemory()
		log.Info().Msg("using in-process feed")
	}

	ctrl := room.New(
		roomStore,
		changeFeed,
		catalog.FileSource{Path: cfg.CatalogPath},
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	mux := http.NewServeMux()
	handlerCtx := &handlers.Context{
		Ctrl:            ctrl,
		Feed:            changeFeed,
		BaseURL:         cfg.BaseURL,
		TransitionDelay: cfg.TransitionDelay,
	}
	handlerCtx.Routes(mux)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}
