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

	"github.com/fastcart/fastcart/internal/client"
	"github.com/fastcart/fastcart/internal/config"
	v1 "github.com/fastcart/fastcart/internal/handler/v1"
	"github.com/fastcart/fastcart/internal/repository/postgres"
	"github.com/fastcart/fastcart/internal/service"
	"github.com/fastcart/fastcart/internal/stream"
	"github.com/fastcart/fastcart/pkg/database"
	"github.com/fastcart/fastcart/pkg/logger"
	"github.com/fastcart/fastcart/pkg/metrics"
	"github.com/fastcart/fastcart/pkg/redisconn"
	"github.com/fastcart/fastcart/pkg/tracer"
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
		log.Fatal("payment service failed", zap.Error(err))
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

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	rdb, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	m := metrics.NewCollector("fastcart_payment")

	orderRepo := postgres.NewOrderRepository(db)
	publisher := stream.NewPublisher(rdb, log)

	procCfg := config.LoadProcessing()
	processor := service.NewOrderProcessor(
		orderRepo,
		publisher,
		cfg.Stream.OrderCompletedStream,
		procCfg.Delay,
		procCfg.BufferSize,
		procCfg.Workers,
		log,
		m,
	)

	fetcher := client.NewInventoryClient(cfg.Inventory)
	orders := service.NewOrderService(orderRepo, fetcher, processor, log, m)

	consumer := stream.NewConsumer(
		rdb,
		cfg.Stream.RefundOrderStream,
		cfg.Stream.PaymentGroup,
		cfg.Stream.ConsumerName,
		cfg.Stream.BlockTimeout,
		cfg.Stream.IdleBackoff,
		service.NewRefundHandler(orderRepo, log, m),
		log,
		m,
	)

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Run(ctx)
	}()

	router := v1.NewRouter(cfg, m)
	v1.NewOrderHandler(orders).Register(router)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info("payment service listening", zap.String("address", srv.Addr))
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
		// Without the refund consumer, refund events pile up unacked;
		// serving HTTP without it would silently diverge.
		stop()
		shutdownServer(srv, cfg.Server.ShutdownTimeout, log)
		processor.Shutdown(cfg.Server.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("stream consumer failed: %w", err)
		}
		log.Info("payment service stopped")
		return nil
	case err := <-serverDone:
		stop()
		logConsumerExit(<-consumerDone, log)
		processor.Shutdown(cfg.Server.ShutdownTimeout)
		return err
	}

	shutdownServer(srv, cfg.Server.ShutdownTimeout, log)
	logConsumerExit(<-consumerDone, log)
	processor.Shutdown(cfg.Server.ShutdownTimeout)

	log.Info("payment service stopped")
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
