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

	"github.com/avoronov/todoapi/internal/config"
	"github.com/avoronov/todoapi/internal/es"
	"github.com/avoronov/todoapi/internal/handlers"
	"github.com/avoronov/todoapi/internal/logging"
	authmw "github.com/avoronov/todoapi/internal/middleware/auth"
	loggingmw "github.com/avoronov/todoapi/internal/middleware/logging"
	"github.com/avoronov/todoapi/internal/mykafka"
	"github.com/avoronov/todoapi/internal/revocation"
	httpserver "github.com/avoronov/todoapi/internal/transport/http"
	"github.com/avoronov/todoapi/pkg/db"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()

	gormDB, err := db.Open(ctx, db.DSN(configuration))
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	revoked, err := revocation.NewRedisStore(ctx, configuration.REDIS_ADDR, configuration.REDIS_PASSWORD)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_JWT_SECRET)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	auth := &authmw.Auth{JWTSecret: jwtSecret, Revoked: revoked}
	deps := httpserver.Deps{
		DB:   gormDB,
		Auth: auth,
		AuthHandler: &handlers.AuthHandler{
			DB:            gormDB,
			JWTSecret:     jwtSecret,
			RefreshSecret: refreshSecret,
			Revoked:       revoked,
			Producer:      prod,
		},
		TodoHandler:   &handlers.TodoHandler{DB: gormDB, Producer: prod, ES: esClient, Index: "todo"},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: "todo"},
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := revoked.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
