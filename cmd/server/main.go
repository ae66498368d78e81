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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/cms_backend/internal/config"
	"github.com/Skotchmaster/cms_backend/internal/es"
	"github.com/Skotchmaster/cms_backend/internal/handlers"
	"github.com/Skotchmaster/cms_backend/internal/logging"
	authmw "github.com/Skotchmaster/cms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/cms_backend/internal/mykafka"
	"github.com/Skotchmaster/cms_backend/internal/service/search"
	"github.com/Skotchmaster/cms_backend/internal/storage"
	"github.com/Skotchmaster/cms_backend/internal/token"
	httpserver "github.com/Skotchmaster/cms_backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	tokens, err := token.NewService(
		[]byte(configuration.SECRET_KEY),
		configuration.ALGORITHM,
		configuration.AccessTTL(),
		configuration.RefreshTTL(),
	)
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(configuration.UPLOAD_DIR)
	if err != nil {
		log.Fatal(err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	indexer := &search.Indexer{Index: "articles"}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		indexer.ES = esClient
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:             db,
		Auth:           &authmw.Middleware{DB: db, Tokens: tokens},
		AuthHandler:    &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		ContentHandler: &handlers.ContentHandler{DB: db, Store: store, Indexer: indexer, Producer: producer},
		UserHandler:    &handlers.UserHandler{DB: db, Producer: producer},
		RoleHandler:    &handlers.RoleHandler{DB: db},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
