package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"trellolite/internal/completion"
	"trellolite/internal/config"
	"trellolite/internal/database"
	"trellolite/internal/database/mongo"
	"trellolite/internal/database/mysql"
	"trellolite/internal/handler"
	"trellolite/internal/logger"
	"trellolite/internal/notify"
	"trellolite/internal/realtime"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using environment only: %v", err)
	}

	// 環境変数を読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	// データベース接続を初期化
	store, err := openStore(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// realtime hub (Redis backplane when configured)
	var backplane realtime.Backplane
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		backplane = realtime.NewRedisBackplane(rdb, realtime.DefaultChannel, zl)
	}
	hub := realtime.NewHub(zl, backplane)
	go hub.Run(ctx)

	// welcome notifications
	var notifier notify.Notifier = notify.NewLogNotifier(zl)
	if cfg.MQURL != "" {
		publisher, err := notify.NewPublisher(cfg.MQURL)
		if err != nil {
			return fmt.Errorf("failed to init MQ publisher: %w", err)
		}
		defer publisher.Close()
		notifier = publisher
	}

	var completer completion.Completer
	if cfg.OpenAIKey != "" {
		completer = completion.NewClient(cfg.AIBaseURL, cfg.OpenAIKey, cfg.AIModel, cfg.AITimeout)
	} else {
		zl.Warn("OPENAI_API_KEY not set, /api/chat/ai will fail")
	}

	// ハンドラー初期化
	h := handler.New(cfg, store, realtime.NewGateway(hub, zl), notifier, completer, zl)
	router := h.SetupRouter()

	// CORS対応
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "x-auth-token"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	fmt.Println("========================================")
	fmt.Println("  Trello Lite API Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	fmt.Printf("  Database: %s\n", cfg.DBDriver)
	fmt.Printf("  Encryption: %v\n", cfg.EncryptionEnabled())
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")

	errCh := make(chan error, 1)
	go func() {
		zl.Info("🚀 Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zl.Info("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (database.Store, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if cfg.DBDriver == "mongo" {
		store, err := mongo.Open(openCtx, cfg.MongoURI, cfg.MongoDB, zl)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := mysql.Open(openCtx, cfg.MySQLDSN(), zl)
	if err != nil {
		return nil, err
	}
	return store, nil
}
