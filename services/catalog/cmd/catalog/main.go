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

	"github.com/Skotchmaster/artisan_shop/pkg/authclient"
	pkgconfig "github.com/Skotchmaster/artisan_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/artisan_shop/pkg/db"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/events"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/artisan_shop/pkg/middleware/logging"

	catalogcfg "github.com/Skotchmaster/artisan_shop/services/catalog/internal/config"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/search"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/service"
)

func main() {
	pkgconfig.LoadEnvFile("services/catalog/.env")
	cfg := catalogcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	r := &repo.GormRepo{DB: db}
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := r.Migrate(startCtx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if cfg.Seed {
		seeded, err := r.Seed(startCtx)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if seeded {
			log.Println("catalog seeded with sample data")
		}
	}

	publisher, closeEvents := events.New(cfg.KafkaBrokers)
	svc := &service.CatalogService{Repo: r, Events: publisher}

	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, nil)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		idx := search.NewIndex(es, cfg.ESIndex)
		if err := idx.Ping(startCtx); err != nil {
			log.Printf("warning: elasticsearch unavailable, search disabled: %v", err)
		} else {
			svc.Index = idx
			if n, err := svc.Reindex(startCtx); err != nil {
				log.Printf("warning: reindex stopped after %d products: %v", n, err)
			}
		}
	}
	startCancel()

	e := echo.New()
	e.HTTPErrorHandler = envelope.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	var refresher *authclient.Client
	if cfg.AuthHTTPURL != "" {
		refresher = authclient.NewClient(cfg.AuthHTTPURL)
	}
	deps := &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		JWTSecret:      cfg.JWTAccessSecret,
	}
	if refresher != nil {
		deps.AuthClient = refresher
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("catalog listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := closeEvents(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	_ = pkgdb.Close(db)

	log.Println("catalog stopped")
}
