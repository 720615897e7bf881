package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kunhe0330/macolor-claude/backend"
	"github.com/kunhe0330/macolor-claude/config"
	"github.com/kunhe0330/macolor-claude/handler"
	"github.com/kunhe0330/macolor-claude/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := config.ParseArgs(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if config.CliArgs.Help {
		fmt.Print(config.CliArgs.Usage())
		return
	}

	log := logging.GetLogger()
	cfg, err := config.LoadConfig(config.CliArgs)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Debug {
		logging.InitLogger(logrus.DebugLevel)
	} else {
		logging.InitLogger(logrus.InfoLevel)
	}

	if cfg.Vision.APIKey == "" {
		log.Warnf("%s is not set, analysis requests will fail", config.APIKeyEnv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := backend.NewBackendClient(ctx, cfg.Vision.APIKey, cfg.Vision.Endpoint, cfg.Vision.Timeout)
	if err != nil {
		log.Fatalf("Failed to create vision client: %v", err)
	}

	httpHandler := handler.NewHTTPHandler(client, handler.Options{
		APIKey:       cfg.Vision.APIKey,
		MaxColors:    cfg.MaxColors,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	mux := http.NewServeMux()
	mux.Handle(cfg.Route, httpHandler)
	mux.HandleFunc("/healthz", handler.Health)

	// Define the server
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.Vision.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Infoln("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	log.Infof("Starting server on %s, analysis endpoint %s", cfg.ListenAddress, cfg.Route)
	// Start listening and serving
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
}
