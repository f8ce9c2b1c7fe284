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

	gatewaycfg "github.com/Skotchmaster/artisan_shop/gateway/internal/config"
	"github.com/Skotchmaster/artisan_shop/gateway/internal/httpserver"
	pkgconfig "github.com/Skotchmaster/artisan_shop/pkg/config"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/pkg/middleware/csrf"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
)

func main() {
	pkgconfig.LoadEnvFile("gateway/.env")
	cfg := gatewaycfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	e := echo.New()
	e.HTTPErrorHandler = envelope.ErrorHandler

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.SecureCookies
	csrfCfg.SkipPaths = []string{"/health/live", "/health/ready", "/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh"}

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:       cfg.AuthHTTPURL,
		CatalogURL:    cfg.CatalogHTTPURL,
		StorefrontURL: cfg.StorefrontURL,
		CSRFConfig:    csrfCfg,
		Gate:          session.DefaultGate(),
		JWTSecret:     cfg.JWTAccessSecret,
		Logger:        logger,
	}); err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		// no WriteTimeout: the proxied cart stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("gateway listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
