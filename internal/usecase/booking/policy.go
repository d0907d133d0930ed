package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// Policy is the venue's booking rules.
type Policy struct {
	Schedule       availability.Schedule
	Zone           timezone.Zone
	ClosedWeekdays []time.Weekday
	MinAdvance     time.Duration
	CountryCode    string
}

func (p Policy) Closed(d timezone.Day) bool {
	return slices.Contains(p.ClosedWeekdays, d.Weekday())
}

// SlotCache keeps resolved slot lists per barber, day and duration.
//
// Get returns a version even on a miss. Set stores the list only if no
// invalidation happened since that version was read.
type SlotCache interface {
	Get(ctx context.Context, barberID uuid.UUID, day timezone.Day, duration int) (slots []availability.Slot, version string, ok bool)
	Set(ctx context.Context, barberID uuid.UUID, day timezone.Day, duration int, version string, slots []availability.Slot)
	Invalidate(ctx context.Context, barberID uuid.UUID, day timezone.Day)
	// InvalidateAll drops every entry, e.g. after a service duration changes.
	InvalidateAll(ctx context.Context)
}

type NoCache struct{}

func (NoCache) Get(context.Context, uuid.UUID, timezone.Day, int) ([]availability.Slot, string, bool) {
	return nil, "", false
}

func (NoCache) Set(context.Context, uuid.UUID, timezone.Day, int, string, []availability.Slot) {}

func (NoCache) Invalidate(context.Context, uuid.UUID, timezone.Day) {}

func (NoCache) InvalidateAll(context.Context) {}

// ======================================================
// HELPERS
// ======================================================

func activeService(ctx context.Context, repo domain.Repository, id uuid.UUID) (*models.Service, error) {
	svc, err := repo.GetActiveService(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

func activeBarber(ctx context.Context, repo domain.Repository, id uuid.UUID) (*models.Barber, error) {
	b, err := repo.GetActiveBarber(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("barber_not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("get barber: %w", err)
	}
	return b, nil
}

func findBooking(ctx context.Context, repo domain.Repository, id uuid.UUID) (*models.Booking, error) {
	b, err := repo.GetBooking(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}
