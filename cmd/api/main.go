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

	"github.com/joho/godotenv"

	"github.com/jinseok-oh/minwon-kiosk/internal/config"
	"github.com/jinseok-oh/minwon-kiosk/internal/handler"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/classifier"
	formservice "github.com/jinseok-oh/minwon-kiosk/internal/service/form"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/guidance"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The classifier is the core of the service, so unlike optional
	// integrations a missing model configuration is fatal.
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize chat model: %v", err)
	}

	classifierSvc, err := classifier.NewService(ctx, chatModel, cfg.AI.UpstreamTimeout)
	if err != nil {
		log.Fatalf("failed to initialize classifier service: %v", err)
	}

	guidanceSvc, err := guidance.NewService(ctx, chatModel, cfg.AI.UpstreamTimeout)
	if err != nil {
		log.Fatalf("failed to initialize guidance service: %v", err)
	}

	formSvc, err := formservice.NewService(ctx, chatModel, cfg.AI.UpstreamTimeout)
	if err != nil {
		log.Printf("warning: failed to initialize form service: %v", err)
		log.Println("continuing without the form-filling flow")
		formSvc = nil
	}

	sessions := session.NewStore()

	router := handler.NewRouter(classifierSvc, guidanceSvc, sessions, formSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("minwon kiosk backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
