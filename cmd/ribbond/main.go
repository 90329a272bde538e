package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/ribbon-tracker/internal/app"
	"github.com/joseph-ayodele/ribbon-tracker/internal/async"
	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ingest"
	"github.com/joseph-ayodele/ribbon-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{}, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := app.PingDB(ctx, a.Stores, logger, 5*time.Second); err != nil {
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}

	svc := server.NewRibbonService(a.Processor, a.Stores.Ribbons, a.Stores.Ledger, a.Exporter, logger)
	grpcServer, healthServer := server.NewGRPCServer(svc, logger)

	// Inbox: documents dropped into INBOX_DIR are extracted by the queue
	// workers; stock updates stay serialized inside the processor.
	var queue *async.ProcessorQueue
	if dir := cfg.Ingest.InboxDir; dir != "" {
		queue = async.NewProcessorQueue(a.Processor.JobHandler(), logger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
			async.WithProcessTimeout(3*time.Minute),
		)
		inbox := ingest.NewInbox(ingest.WatchConfig{
			Roots:       []string{dir},
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}, queue, logger)
		go func() {
			if err := inbox.Run(ctx); err != nil {
				logger.Error("inbox stopped", "dir", dir, "error", err)
			}
		}()
		logger.Info("watching inbox", "dir", dir, "workers", cfg.Ingest.Workers)
	}

	logger.Info("ribbond listening", "addr", addr, "driver", a.Stores.Driver)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	if queue != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		queue.Shutdown(shutdownCtx)
		cancel()
	}
	grpcServer.GracefulStop()
}
