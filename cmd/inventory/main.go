package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/cache"
	"github.com/fastcart/fastcart/internal/config"
	v1 "github.com/fastcart/fastcart/internal/handler/v1"
	"github.com/fastcart/fastcart/internal/repository/redisrepo"
	"github.com/fastcart/fastcart/internal/service"
	"github.com/fastcart/fastcart/internal/stream"
	"github.com/fastcart/fastcart/pkg/logger"
	"github.com/fastcart/fastcart/pkg/metrics"
	"github.com/fastcart/fastcart/pkg/redisconn"
	"github.com/fastcart/fastcart/pkg/tracer"
)

const (
	globalKeyPrefix  = "fastcart"
	productKeyPrefix = "product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("inventory service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	rdb, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	m := metrics.NewCollector("fastcart_inventory")

	productRepo := redisrepo.NewProductRepository(rdb, globalKeyPrefix, productKeyPrefix)
	productCache := cache.New(rdb, cfg.Cache.Prefix, cfg.Cache.TTL, log, m)
	products := service.NewProductService(productRepo, productCache, log)

	publisher := stream.NewPublisher(rdb, log)
	consumer := stream.NewConsumer(
		rdb,
		cfg.Stream.OrderCompletedStream,
		cfg.Stream.InventoryGroup,
		cfg.Stream.ConsumerName,
		cfg.Stream.BlockTimeout,
		cfg.Stream.IdleBackoff,
		service.NewInventoryHandler(products, publisher, cfg.Stream.RefundOrderStream, log),
		log,
		m,
	)

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Run(ctx)
	}()

	router := v1.NewRouter(cfg, m)
	v1.NewProductHandler(products).Register(router)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info("inventory service listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-consumerDone:
		// A dead consumer means completed orders stop decrementing
		// stock; serving HTTP without it would silently diverge.
		stop()
		shutdownServer(srv, cfg.Server.ShutdownTimeout, log)
		if err != nil {
			return fmt.Errorf("stream consumer failed: %w", err)
		}
		log.Info("inventory service stopped")
		return nil
	case err := <-serverDone:
		stop()
		logConsumerExit(<-consumerDone, log)
		return err
	}

	shutdownServer(srv, cfg.Server.ShutdownTimeout, log)
	logConsumerExit(<-consumerDone, log)

	log.Info("inventory service stopped")
	return nil
}

func shutdownServer(srv *http.Server, timeout time.Duration, log *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown failed", zap.Error(err))
	}
}

func logConsumerExit(err error, log *zap.Logger) {
	if err != nil {
		log.Error("stream consumer exited with error", zap.Error(err))
	}
}
