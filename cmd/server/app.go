package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"eventregistration/config"
	"eventregistration/internal/adapters/auth"
	"eventregistration/internal/adapters/email"
	"eventregistration/internal/adapters/geo"
	"eventregistration/internal/adapters/sheets"
	"eventregistration/internal/domain"
	"eventregistration/internal/metrics"
	"eventregistration/internal/repository/postgres"
	"eventregistration/internal/services"
)

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	jwt      *auth.JWT

	registration domain.RegistrationService
	host         domain.HostService
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := openDB(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "postgres"),
	)
	m := metrics.New(registry)

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load display timezone: %w", err)
	}

	mirror, err := sheets.NewMirror(ctx, sheets.Config{
		SpreadsheetID: cfg.SheetID,
		SheetName:     cfg.SheetName,
		ClientEmail:   cfg.SheetClientEmail,
		PrivateKey:    cfg.SheetPrivateKey,
		Logger:        logger.With("component", "sheets"),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("spreadsheet mirror: %w", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
		Logger: logger.With("component", "mailer"),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}

	if cfg.HostEmail == "" {
		logger.Warn("HOST_EMAIL is not set, host views are disabled")
	}

	registrants := postgres.NewRegistrantRepository(db)
	notifier := services.NewNotificationService(mailer, email.NewTemplateRenderer(), cfg.PortalURL, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		metrics:  m,
		jwt:      auth.NewJWT(cfg.JWTSecret),
		registration: services.NewRegistrationService(services.RegistrationConfig{
			Registrants:    registrants,
			Allocator:      services.NewLuckyNumberAllocator(registrants, cfg.LuckyNumberMaxAttempts, nil, m),
			Mirror:         mirror,
			Detector:       geo.NewDetector(nil),
			HostEmail:      cfg.HostEmail,
			DefaultCountry: cfg.DefaultCountry,
			Logger:         logger,
			Recorder:       m,
		}),
		host: services.NewHostService(services.HostConfig{
			Registrants: registrants,
			Archive:     postgres.NewArchiveRepository(db),
			Mirror:      mirror,
			Notifier:    notifier,
			HostEmail:   cfg.HostEmail,
			Location:    loc,
			Logger:      logger,
			Recorder:    m,
		}),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
