package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/madhava-poojari/jobs-admin-console/internal/api/v1"
	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/console"
	"github.com/madhava-poojari/jobs-admin-console/internal/export"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/server"
	"github.com/madhava-poojari/jobs-admin-console/internal/service"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/translation"
	"github.com/madhava-poojari/jobs-admin-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatal(err, "load config")
	}
	log := logger.InitDefault(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.NewGormStore(cfg)
	if err != nil {
		log.Fatal(err, "open database")
	}
	defer s.Close()

	if op, err := service.NewOperatorService(s).Bootstrap(ctx, cfg.BootstrapEmail, cfg.BootstrapPassword); err != nil {
		log.Error(err, "bootstrap operator")
	} else if op != nil {
		log.Infof("created first operator %s (%s)", op.Email, op.ID)
	}

	client, err := marketplace.New(marketplace.Config{
		BaseURL: cfg.MarketplaceBaseURL,
		Token:   cfg.MarketplaceToken,
		Timeout: cfg.MarketplaceTimeout,
	}, log)
	if err != nil {
		log.Fatal(err, "marketplace client")
	}
	reg := marketplace.NewRegistry(client)

	var translator translation.Translator = translation.Proxy{Client: client}
	if cfg.TranslateAPIKey != "" {
		g, err := translation.NewGoogle(ctx, cfg.TranslateAPIKey)
		if err != nil {
			log.Error(err, "google translate unavailable, using marketplace proxy")
		} else {
			translator = g
		}
	}

	var storage export.Storage = export.NewFileStorage(cfg.ExportDir)
	if cfg.R2Enabled() {
		storage = export.NewR2Storage(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2Endpoint, cfg.R2BucketName)
	}
	log.Infof("export storage: %s", storage.Backend())
	exporter := export.NewExporter(reg.Employers, storage, s, log)

	var publisher audit.Publisher = audit.LogPublisher{Log: log.Named("audit")}
	if cfg.AMQPURL != "" {
		p, err := audit.DialAMQP(cfg.AMQPURL, cfg.AuditExchange)
		if err != nil {
			log.Error(err, "rabbitmq unavailable, audit events go to the log")
		} else {
			publisher = p
		}
	}
	defer publisher.Close()
	auditor := audit.NewAuditor(s, log)

	cons := console.New(reg, console.Deps{
		Translator:      translator,
		TranslateTarget: cfg.TranslateTarget,
		Audit:           auditor,
		Log:             log,
	})

	w := worker.New(worker.Schedules{
		Outbox:          cfg.OutboxSchedule,
		Maintenance:     cfg.MaintenanceSchedule,
		ExportRetention: cfg.ExportRetention,
	}, s, publisher, s, exporter, log)
	if err := w.Start(); err != nil {
		log.Fatal(err, "start worker")
	}
	defer w.Stop()

	srv := server.NewServer(cfg, v1.Deps{
		Store:      s,
		Console:    cons,
		Exporter:   exporter,
		Translator: translator,
		Audit:      auditor,
		Log:        log,
	}).NewHTTPServer()

	go func() {
		log.Infof("listening on %s", cfg.BindAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "http shutdown")
	}
}
