package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

var ErrNotFound = errors.New("not found")

// ConflictCheck inspects the barber's occupied intervals for the day and
// returns a non-nil error to abort the insert.
type ConflictCheck func(existing []availability.Occupied) error

type ReportFilter struct {
	From     time.Time
	To       time.Time
	BarberID *uuid.UUID
}

type Repository interface {
	// -------- Catalog --------
	GetActiveBarber(ctx context.Context, id uuid.UUID) (*models.Barber, error)
	GetActiveService(ctx context.Context, id uuid.UUID) (*models.Service, error)

	// -------- Availability --------
	ListOccupied(
		ctx context.Context,
		barberID uuid.UUID,
		start time.Time,
		end time.Time,
	) ([]availability.Occupied, error)

	// -------- Booking (create) --------
	// CreateExclusive serialises writers for b.BarberID, runs check against
	// the barber's occupied intervals in [dayStart, dayEnd) and inserts b
	// only when check passes, all in one transaction.
	CreateExclusive(
		ctx context.Context,
		b *models.Booking,
		dayStart time.Time,
		dayEnd time.Time,
		check ConflictCheck,
	) error

	// -------- Booking (state change) --------
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)

	// SaveTransition persists status and timestamps of b, provided the row is
	// still in status from. Otherwise it fails with invalid_state.
	SaveTransition(ctx context.Context, b *models.Booking, from Status) error

	FindLatestPendingByPhone(
		ctx context.Context,
		phone string,
		after time.Time,
	) (*models.Booking, error)

	// -------- Report --------
	ListForPeriod(ctx context.Context, f ReportFilter) ([]models.Booking, error)
}
