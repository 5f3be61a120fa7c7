package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/product_catalog/internal/config"
	"github.com/Skotchmaster/product_catalog/internal/db"
	"github.com/Skotchmaster/product_catalog/internal/es"
	"github.com/Skotchmaster/product_catalog/internal/httpserver"
	"github.com/Skotchmaster/product_catalog/internal/logging"
	authmw "github.com/Skotchmaster/product_catalog/internal/middleware/auth"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	r := repo.New(gdb)

	var publisher mykafka.Publisher = mykafka.Noop{}
	var producer *mykafka.Producer
	if cfg.KafkaEnabled() {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		publisher = producer
	}

	catalog := &service.CatalogService{Repo: r, Publisher: publisher}
	if cfg.ElasticsearchEnabled() {
		if err := wireElasticsearch(cfg, catalog, r, logger); err != nil {
			if cfg.SearchBackend == config.SearchBackendElasticsearch {
				log.Fatalf("elasticsearch: %v", err)
			}
			logger.Warn("es_disabled", "error", err)
		}
	}

	users := &service.UserService{Repo: r, Publisher: publisher}
	authSvc := &service.AuthService{
		Repo:          r,
		Users:         users,
		AccessSecret:  []byte(cfg.JWTAccessSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	e := httpserver.New(&httpserver.Deps{
		ServiceName:    cfg.ServiceName,
		Logger:         logger,
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:    &httpserver.UserHTTP{Svc: users},
		HealthHandler:  &httpserver.HealthHTTP{DB: gdb},
		Bearer:         authmw.NewBearerMiddleware(authSvc),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "search_backend", cfg.SearchBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}

func wireElasticsearch(cfg *config.Config, catalog *service.CatalogService, r *repo.GormRepo, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := es.NewClient(ctx, es.ClientConfig{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword}, logger)
	if err != nil {
		return err
	}

	indexer := &es.Indexer{Client: client, Index: cfg.ESIndex}
	if err := indexer.EnsureIndex(ctx); err != nil {
		return err
	}
	catalog.Indexer = indexer

	if cfg.SearchBackend == config.SearchBackendElasticsearch {
		catalog.Searcher = &es.Searcher{Client: client, Index: cfg.ESIndex, Loader: r}
	}
	return nil
}
