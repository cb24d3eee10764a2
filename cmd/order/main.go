package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andikarachman/go-shop-events/internal/config"
	"github.com/andikarachman/go-shop-events/internal/httpx"
	kafkax "github.com/andikarachman/go-shop-events/internal/kafka"
	"github.com/andikarachman/go-shop-events/internal/logging"
	"github.com/andikarachman/go-shop-events/internal/order"
	"github.com/andikarachman/go-shop-events/internal/postgres"
	"github.com/andikarachman/go-shop-events/internal/product"
	"github.com/andikarachman/go-shop-events/internal/redisx"
	"github.com/andikarachman/go-shop-events/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Initialize(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewStore(rdb)

	producer := kafkax.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	orderCommands := order.NewCommandService(
		&order.CommandRepo{DB: db},
		&order.QueryRepo{DB: db},
		&order.ItemQueryRepo{DB: db},
		product.NewClient(cfg.ProductBaseURL),
		producer,
		cache,
	)
	orderQueries := order.NewQueryService(&order.QueryRepo{DB: db}, &order.ItemQueryRepo{DB: db}, cache)

	userCommands := user.NewCommandService(&user.CommandRepo{DB: db}, cache)
	userQueries := user.NewQueryService(&user.QueryRepo{DB: db}, cache)

	router := httpx.NewRouter(cfg.ServiceName)
	(&httpx.OrderHandler{Commands: orderCommands, Queries: orderQueries}).Register(router)
	(&httpx.UserHandler{Commands: userCommands, Queries: userQueries}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("order service exited", zap.Error(err))
	}
	logger.Info("order service stopped")
}
