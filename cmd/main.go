package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goodworks/donations/internal/audit"
	"github.com/goodworks/donations/internal/config"
	"github.com/goodworks/donations/internal/kafka"
	"github.com/goodworks/donations/internal/kv"
	"github.com/goodworks/donations/internal/logger"
	"github.com/goodworks/donations/internal/server"
	"github.com/goodworks/donations/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	zl := logger.New()
	defer zl.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fileStore, err := kv.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		zl.Fatal("Storage init error", zap.Error(err))
	}

	var producer kafka.Producer
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		producer = kafka.NewWriterProducer(brokers, zl)
	} else {
		producer = kafka.NewConsoleProducer(zl)
	}

	auditManager := audit.NewManager(audit.Config{
		Workers:       cfg.Audit.Workers,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: cfg.Audit.FlushInterval,
		Topic:         cfg.Kafka.Topic,
	}, producer, zl)
	auditManager.Start(ctx)

	donations := store.New(store.Options{
		KV:     fileStore,
		Key:    cfg.Storage.Key,
		Logger: zl,
		Audit:  auditManager,
		Delays: store.Delays{
			Accept:   cfg.Lifecycle.AcceptAfter,
			Pickup:   cfg.Lifecycle.PickupAfter,
			Complete: cfg.Lifecycle.CompleteAfter,
		},
	})
	donations.ScheduleAll()

	sessions, err := server.NewSessions(cfg.Admin.Username, cfg.Admin.Password, server.Viewer{
		Name:     cfg.Admin.Name,
		Initials: cfg.Admin.Initials,
	})
	if err != nil {
		zl.Fatal("Session init error", zap.Error(err))
	}

	srv := server.New(donations, sessions, server.Config{
		Port:         cfg.App.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		PublicPaths:  cfg.PublicPathList(),
	}, zl)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("Server shutdown failed", zap.Error(err))
		}
		donations.Close()
		auditManager.Shutdown(shutdownCtx)
		if err := producer.Close(); err != nil {
			zl.Error("Producer close failed", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zl.Fatal("Server error", zap.Error(err))
	}
	zl.Info("Server gracefully stopped")
}
