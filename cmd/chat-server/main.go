package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/config"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/events"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/handlers"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/logger"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/metrics"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/profile"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/repository"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/routes"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/service"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env == "development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatalw("mongo connect failed", "error", err)
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutCtx)
	}()
	db := client.Database(cfg.Mongo.Database)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unavailable, caching and rate limiting degraded", "error", err)
	}
	defer rdb.Close()

	var cache *store.Cache
	if cfg.Cache.Enabled {
		cache = store.NewCache(rdb, cfg.Redis.Prefix, cfg.CacheTTL, log)
	}
	st := store.NewMongoStore(db, cache, log)

	chatRepo := repository.NewChatRepository(st, log)
	msgRepo := repository.NewMessageRepository(st, log)
	directory := profile.NewBatchLoader(profile.NewStoreDirectory(st, log), 0, 0)

	chatSvc := service.NewChatService(chatRepo, directory, log)
	msgSvc := service.NewMessageService(chatRepo, msgRepo, nil, log)

	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer pub.Close()
	hub := ws.NewHub()

	metricsSrv := metrics.NewServer(cfg.App.MetricsPort, log)
	go metricsSrv.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, routes.Deps{
		Chats:     handlers.NewChatHandler(chatSvc, pub, hub, log),
		Messages:  handlers.NewMessageHandler(msgSvc, pub, hub, log),
		WS:        handlers.NewWSHandler(hub, chatRepo, log),
		JWTSecret: cfg.JWT.Secret,
		Redis:     rdb,
		RateLimit: cfg.RateLimit.Limit,
		RateWin:   cfg.RateLimitWindow,
		Log:       log,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		log.Infow("server starting", "addr", addr, "env", cfg.App.Env)
		if err := app.Listen(addr); err != nil {
			log.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutCtx); err != nil {
		log.Errorw("http shutdown failed", "error", err)
	}
	if err := metricsSrv.Shutdown(shutCtx); err != nil {
		log.Errorw("metrics shutdown failed", "error", err)
	}
}
