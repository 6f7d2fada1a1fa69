package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/flicky/storefront-api/internal/config"
	"github.com/flicky/storefront-api/internal/handler"
	"github.com/flicky/storefront-api/internal/repository"
	"github.com/flicky/storefront-api/internal/service"
	"github.com/flicky/storefront-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Services
	creds, err := service.NewStaticCredentials(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.UID)
	if err != nil {
		log.Error("load admin credentials", "error", err)
		os.Exit(1)
	}
	tokenSvc := service.NewTokenService(creds, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(store.Products, redisClient, log)
	couponSvc := service.NewCouponService(store.Coupons)
	cartSvc := service.NewCartService(store.Carts, store.Products)
	orderSvc := service.NewOrderService(store.Orders, worker.NewPublisher(amqpCh), log)
	customerSvc := service.NewCustomerService(store.Customers)

	health := handler.NewHealthHandler(
		handler.Check{Name: "storage", Ping: store.Ping},
		handler.Check{Name: "redis", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		handler.Check{Name: "rabbitmq", Ping: func(context.Context) error {
			if amqpConn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}},
	)

	// Worker
	orderWorker := worker.NewOrderWorker(amqpCh, store.Customers, worker.NewRedisIdempotency(redisClient), log)

	router := handler.NewRouter(handler.RouterConfig{
		Log:          log,
		AllowOrigins: cfg.CORS.AllowOrigins,
		CORSMaxAge:   cfg.CORS.MaxAge,
		Products:     productSvc,
		Coupons:      couponSvc,
		Carts:        cartSvc,
		Orders:       orderSvc,
		Tokens:       tokenSvc,
		Customers:    customerSvc,
		Health:       health,
	})

	if err := orderWorker.Start(ctx); err != nil {
		log.Error("start order worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	orderWorker.Stop()
	cancel()
	log.Info("server stopped")
}

// openStore connects the configured backend and returns its repositories
// with a matching close function.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*repository.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("parse db config: %w", err)
		}
		poolCfg.MaxConns = cfg.DB.MaxConns

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("connected to PostgreSQL")
		return repository.NewPostgresStore(pool), pool.Close, nil

	case config.BackendMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			disconnect()
			return nil, nil, err
		}
		log.Info("connected to MongoDB", "database", cfg.Mongo.Database)
		return repository.NewMongoStore(db), disconnect, nil

	default:
		log.Warn("using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}
