package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barbershop-booking/internal/db"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/storage"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/routes"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "barbershop-booking")
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	defer dbpkg.Close(db)

	if created, err := infraRepo.NewAdminGormRepository(db).EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	} else if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	// --------------------------------------------------
	// Métricas
	// --------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --------------------------------------------------
	// Infra opcional
	// --------------------------------------------------
	infra := routes.Infra{Metrics: m, Log: log}

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, cache and rate limit disabled", "err", err)
		} else {
			defer rdb.Close()
			infra.Redis = rdb
		}
	}

	if cfg.S3.Enabled() {
		infra.Photos = storage.NewS3PhotoStore(cfg.S3)
	}

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	defer dispatcher.Close()
	infra.Audit = dispatcher

	// --------------------------------------------------
	// Lembretes
	// --------------------------------------------------
	if cfg.Reminder.Enabled {
		var sender reminder.Sender = reminder.LogSender{Log: log}
		if cfg.Twilio.Enabled() {
			sender = reminder.NewTwilioSender(cfg.Twilio, &http.Client{Timeout: 10 * time.Second})
		} else {
			log.Warn("twilio not configured, reminders are only logged")
		}

		worker := reminder.New(
			infraRepo.NewBookingGormRepository(db),
			sender,
			reminder.Config{
				Interval:    cfg.Reminder.Interval,
				MaxAttempts: cfg.Reminder.MaxAttempts,
				RetryAfter:  cfg.Reminder.RetryAfter,
				BatchSize:   cfg.Reminder.BatchSize,
				CountryCode: cfg.Twilio.CountryCode,
			},
			cfg.Venue.Zone(),
			log,
			m,
		)
		workerDone := make(chan struct{})
		go func() {
			defer close(workerDone)
			worker.Run(ctx)
		}()
		// runs before the deferred db close
		defer func() {
			stop()
			<-workerDone
		}()
	}

	// --------------------------------------------------
	// HTTP
	// --------------------------------------------------
	r, err := routes.NewEngine(cfg)
	if err != nil {
		return err
	}
	routes.RegisterRoutes(r, db, cfg, infra)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", cfg.Addr(), "venue", cfg.Venue.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
