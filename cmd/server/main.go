package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/minimmo/pkg/api"
	"github.com/cbodonnell/minimmo/pkg/config"
	"github.com/cbodonnell/minimmo/pkg/game"
	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/version"
	"github.com/cbodonnell/minimmo/pkg/workers"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	port := flag.Int("port", 8000, "port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := repositories.Open(ctx, cfg.DatabaseURL, repositories.OpenOptions{
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to open repository: %v", err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := repository.Close(closeCtx); err != nil {
			log.Error("Failed to close repository: %v", err)
		}
	}()

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		Repository: repository,
	})

	moverWorker := workers.NewMoverWorker(workers.NewMoverWorkerOptions{
		Mover: gameManager,
	})

	apiServerOpts := api.NewAPIServerOptions{
		Port:        *port,
		AllowOrigin: cfg.AllowOrigin,
		Repository:  repository,
		GameManager: gameManager,
	}
	if cfg.TLSEnabled() {
		apiServerOpts.TLS = &api.TLSConfig{
			CertFile: cfg.TLSCertFile,
			KeyFile:  cfg.TLSKeyFile,
		}
	}
	server := api.NewAPIServer(apiServerOpts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		moverWorker.Start(gctx)
		return nil
	})
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error: %v", err)
	}
}
