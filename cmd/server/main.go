package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/daisywatson/monopoly-game/internal/api"
	"github.com/daisywatson/monopoly-game/internal/config"
	"github.com/daisywatson/monopoly-game/internal/db/mongodb"
	"github.com/daisywatson/monopoly-game/internal/db/redis"
	"github.com/daisywatson/monopoly-game/internal/game/engine"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
	"github.com/daisywatson/monopoly-game/internal/game/websocket"
	"github.com/daisywatson/monopoly-game/internal/queue"
)

const (
	historyQueueName = "monopoly:history:queue"
	shutdownTimeout  = 10 * time.Second
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Production {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MongoDB connection with retry capabilities
	mongoClient, err := mongodb.Connect(ctx, cfg.MongoDB.URI, sugar)
	if err != nil {
		sugar.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			sugar.Errorf("Failed to disconnect from MongoDB: %v", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongodb.CreateIndexes(ctx, db, cfg.MongoDB.GamesColl, cfg.MongoDB.EventsColl); err != nil {
		sugar.Fatalf("Failed to create MongoDB indexes: %v", err)
	}
	history := mongodb.NewHistoryStore(db, cfg.MongoDB.GamesColl, cfg.MongoDB.EventsColl)
	sugar.Info("Connected to MongoDB")

	// Initialize Redis connection with retry capabilities
	redisClient, err := redis.Connect(ctx, redis.Options{
		Addr:     cfg.Redis.URI,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, sugar)
	if err != nil {
		sugar.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			sugar.Errorf("Failed to close Redis connection: %v", err)
		}
	}()
	cache := redis.NewSnapshotCache(redisClient, time.Duration(cfg.Redis.SnapshotTTL)*time.Minute, cfg.Redis.EventChannel, sugar)
	historyQueue := queue.NewRedisQueue(redisClient, historyQueueName, logger)
	sugar.Info("Connected to Redis")

	// Game manager first; the hub needs it to execute commands
	gameManager := manager.NewGameManager(ctx, cfg.Game, sugar, nil, historyQueue, cache,
		manager.WithSessionOptions(engine.WithLogger(sugar.Named("engine"))))
	hub := websocket.NewHub(ctx, gameManager, sugar, cfg.Game.CommandRate, cfg.Game.CommandBurst)
	gameManager.SetWebSocketHub(hub)
	go hub.Run()
	go gameManager.Run(ctx)
	sugar.Info("Game manager and WebSocket hub are running")

	// The worker moves game history from the queue into MongoDB
	worker := queue.NewWorker(historyQueue, history, logger)
	worker.Start()
	sugar.Info("Queue worker started")

	server := api.NewServer(ctx, cfg, api.Dependencies{
		Games:   gameManager,
		Hub:     hub,
		History: history,
		Mongo:   mongoClient,
		Cache:   cache,
		Queue:   historyQueue,
	}, sugar)

	go func() {
		if err := server.Start(); err != nil {
			sugar.Infof("Server stopped: %v", err)
		}
	}()
	sugar.Infof("Server started on port %d", cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop games and sockets before the worker drains its last message
	cancel()
	worker.Stop()
	sugar.Info("Queue worker stopped")

	sugar.Info("Server exited properly")
}
