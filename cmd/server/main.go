package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/shoply/backend/internal/adapter/handler"
	"github.com/shoply/backend/internal/adapter/notify"
	"github.com/shoply/backend/internal/adapter/storage"
	"github.com/shoply/backend/internal/core/service"
	"github.com/shoply/backend/pkg/logging"
	"github.com/shoply/backend/pkg/metrics"
)

func main() {
	logging.Init(slog.LevelInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpAddr := getenv("HTTP_ADDR", ":8080")
	mysqlDSN := getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/shoply?parseTime=true")
	redisAddr := getenv("REDIS_ADDR", "localhost:6379")

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		slog.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		slog.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to redis")

	store := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb)
	notifier := notify.NewRedisNotifier(rdb)

	notifications := service.NewNotificationService(store, cache, notifier)
	checkout := service.NewCheckoutService(store, notifications)
	status := service.NewStatusService(store, notifications)
	queries := service.NewOrderQueryService(store)

	h := handler.NewHTTPHandler(checkout, status, queries, notifications)
	router := handler.NewRouter(h, metrics.NewServerMetrics("server"))

	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", httpAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	rdb.Close()
	db.Close()
	slog.Info("connections closed")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
