package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/artisan_shop/pkg/authclient"
	"github.com/Skotchmaster/artisan_shop/pkg/cart"
	"github.com/Skotchmaster/artisan_shop/pkg/catalogclient"
	pkgconfig "github.com/Skotchmaster/artisan_shop/pkg/config"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/events"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/artisan_shop/pkg/middleware/logging"

	storefrontcfg "github.com/Skotchmaster/artisan_shop/services/storefront/internal/config"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/httpserver"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/service"
)

func main() {
	pkgconfig.LoadEnvFile("services/storefront/.env")
	cfg := storefrontcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	var storage cart.Storage = cart.NewMemoryStorage()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			// carts degrade to empty until redis comes back
			log.Printf("warning: redis %s unreachable: %v", cfg.RedisAddr, err)
		}
		storage = cart.NewRedisStorage(rdb, cfg.CartTTL)
	} else {
		log.Println("REDIS_ADDR not set, carts are kept in memory")
	}

	publisher, closeEvents := events.New(cfg.KafkaBrokers)
	catalog := catalogclient.NewClient(cfg.CatalogHTTPURL)
	svc := &service.CartService{
		Storage:      storage,
		Catalog:      catalog,
		Events:       publisher,
		PollInterval: cfg.CartPollInterval,
	}

	e := echo.New()
	e.HTTPErrorHandler = envelope.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := &httpserver.Deps{
		CartHandler:     &httpserver.CartHTTP{Svc: svc},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: svc},
		AdminHandler:    &httpserver.AdminHTTP{Catalog: catalog, JWTSecret: cfg.JWTAccessSecret},
		JWTSecret:       cfg.JWTAccessSecret,
	}
	if cfg.AuthHTTPURL != "" {
		deps.AuthClient = authclient.NewClient(cfg.AuthHTTPURL)
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		// no WriteTimeout: /cart/stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := closeEvents(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	log.Println("storefront stopped")
}
