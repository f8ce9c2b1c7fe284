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

	pkgconfig "github.com/Skotchmaster/artisan_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/artisan_shop/pkg/db"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/events"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/artisan_shop/pkg/middleware/logging"

	authcfg "github.com/Skotchmaster/artisan_shop/services/auth/internal/config"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/httpserver"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/repo"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/service"
)

func main() {
	pkgconfig.LoadEnvFile("services/auth/.env")
	cfg := authcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	r := &repo.GormRepo{
		DB:            db,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
	}

	publisher, closeEvents := events.New(cfg.KafkaBrokers)
	svc := &service.AuthService{Repo: r, Events: publisher}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := r.Migrate(startCtx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := svc.EnsureAdmin(startCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
		log.Printf("admin account %s ready", cfg.AdminEmail)
	}
	startCancel()

	e := echo.New()
	e.HTTPErrorHandler = envelope.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("auth listening on %s", srv.Addr)
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
	_ = pkgdb.Close(db)

	log.Println("auth stopped")
}
