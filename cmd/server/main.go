package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/hypermines/internal/config"
	"github.com/vancomm/hypermines/internal/database"
	"github.com/vancomm/hypermines/internal/middleware"
	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/placement"
	"github.com/vancomm/hypermines/internal/repository"
)

func main() {
	logger := config.Logger()
	mines.Log = logger.With(slog.String("component", "mines"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	limits, err := config.Limits()
	if err != nil {
		return err
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	cookies := config.NewCookies(jwt)

	db, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	app := &application{
		logger:  logger,
		repo:    repository.New(db),
		cookies: cookies,
		ws:      config.NewWebSocket(),
		limits:  limits,
		locks:   newSessionLocks(),
		rnd:     placement.NewRand(),
	}

	addr := config.Addr()
	server := &http.Server{
		Addr:    addr,
		Handler: middleware.Wrap(
			app.Router(config.BasePath()),
			middleware.Logging(logger),
			middleware.Auth(logger, cookies),
			middleware.Cors(),
		),
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 60,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("hypermines server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	return g.Wait()
}
