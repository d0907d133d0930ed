package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/messages"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

// Store is the persistence the worker needs.
type Store interface {
	// ListDueReminders returns pending bookings starting after now with
	// fewer than maxAttempts attempts and no message since retryBefore.
	ListDueReminders(ctx context.Context, now, retryBefore time.Time, maxAttempts, limit int) ([]models.Booking, error)

	// ClaimReminder consumes one attempt if the counter still equals
	// seenAttempts and the booking is still pending.
	ClaimReminder(ctx context.Context, id uuid.UUID, seenAttempts int, now time.Time) (bool, error)
}

// Sender delivers a text message to a normalized phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type Config struct {
	Interval    time.Duration
	MaxAttempts int
	RetryAfter  time.Duration
	BatchSize   int
	CountryCode string
}

type Result struct {
	Due     int
	Claimed int
	Sent    int
	Failed  int
}

// Worker asks clients with pending bookings to confirm them. Each booking
// receives at most MaxAttempts rounds, even with several replicas running.
type Worker struct {
	store   Store
	sender  Sender
	cfg     Config
	zone    timezone.Zone
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(store Store, sender Sender, cfg Config, zone timezone.Zone, log *slog.Logger, m *metrics.Metrics) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = cfg.Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		store:   store,
		sender:  sender,
		cfg:     cfg,
		zone:    zone,
		log:     log.With("component", "reminder"),
		metrics: m,
		now:     time.Now,
	}
}

// Run processes a round immediately and then every Interval until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if res, err := w.RunOnce(ctx); err != nil {
			w.log.Error("reminder round failed", "err", err)
		} else if res.Due > 0 {
			w.log.Info("reminder round done",
				"due", res.Due, "claimed", res.Claimed, "sent", res.Sent, "failed", res.Failed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	now := w.now()

	due, err := w.store.ListDueReminders(ctx, now, now.Add(-w.cfg.RetryAfter), w.cfg.MaxAttempts, w.cfg.BatchSize)
	if err != nil {
		return Result{}, err
	}

	res := Result{Due: len(due)}
	for i := range due {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		b := &due[i]

		ok, err := w.store.ClaimReminder(ctx, b.ID, b.ConfirmationAttempts, now)
		if err != nil {
			w.log.Error("claim reminder failed", "booking_id", b.ID, "err", err)
			w.observeClaim("error")
			continue
		}
		if !ok {
			w.observeClaim("lost")
			continue
		}
		w.observeClaim("won")
		res.Claimed++

		d := messages.For(b, w.zone.Location())
		w.deliver(ctx, &res, b, "client", b.ClientPhone, messages.ConfirmationRequest(d))
		w.deliver(ctx, &res, b, "barber", b.Barber.Phone, messages.ConfirmationNotice(d))
	}
	return res, nil
}

func (w *Worker) deliver(ctx context.Context, res *Result, b *models.Booking, recipient, phone, body string) {
	to, ok := validators.NormalizePhone(phone, w.cfg.CountryCode)
	if !ok {
		w.log.Warn("invalid phone, message skipped", "booking_id", b.ID, "recipient", recipient)
		w.observeSend(recipient, "invalid_phone")
		res.Failed++
		return
	}

	if err := w.sender.Send(ctx, to, body); err != nil {
		// a tentativa continua consumida
		w.log.Error("send confirmation failed",
			"booking_id", b.ID, "recipient", recipient, "attempt", b.ConfirmationAttempts+1, "err", err)
		w.observeSend(recipient, "failed")
		res.Failed++
		return
	}
	w.observeSend(recipient, "sent")
	res.Sent++
}

func (w *Worker) observeClaim(result string) {
	if w.metrics != nil {
		w.metrics.ReminderClaims.WithLabelValues(result).Inc()
	}
}

func (w *Worker) observeSend(recipient, outcome string) {
	if w.metrics != nil {
		w.metrics.ReminderSends.WithLabelValues(recipient, outcome).Inc()
	}
}
