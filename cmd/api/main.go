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
	"github.com/redis/go-redis/v9"

	"github.com/novapay/backend/internal/config"
	"github.com/novapay/backend/internal/handler"
	"github.com/novapay/backend/internal/notify"
	paymentService "github.com/novapay/backend/internal/service/payment"
	"github.com/novapay/backend/internal/store"
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

	sessionStore, err := newSessionStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}

	var registry *notify.Registry
	var notifier paymentService.Notifier
	if cfg.Notifications.Enabled {
		registry = notify.NewRegistry()
		notifier = registry
		log.Println("push notifications enabled")
	} else {
		log.Println("push notifications disabled, agents must poll for completion")
	}

	paySvc := paymentService.NewService(sessionStore, notifier, cfg.Payment.FrontendURL)
	router := handler.NewRouter(paySvc, registry)

	startServer(ctx, cfg.Server, router)
}

func newSessionStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, using in-memory session store")
		return store.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	redisStore := store.NewRedisStore(redis.NewClient(opts))
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisStore.Ping(pingCtx); err != nil {
		log.Printf("warning: redis not reachable yet: %v", err)
	} else {
		log.Println("redis connected")
	}
	return redisStore, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("NovaPay backend listening on %s", addr)
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
