package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *BookingGormRepository) GetActiveBarber(
	ctx context.Context,
	id uuid.UUID,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = true", id).
		First(&barber).Error; err != nil {
		return nil, notFound(err)
	}
	return &barber, nil
}

func (r *BookingGormRepository) GetActiveService(
	ctx context.Context,
	id uuid.UUID,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = true", id).
		First(&svc).Error; err != nil {
		return nil, notFound(err)
	}
	return &svc, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

type occupiedRow struct {
	BarberID    uuid.UUID
	StartAt     time.Time
	DurationMin *int
}

func listOccupied(
	db *gorm.DB,
	barberID uuid.UUID,
	start time.Time,
	end time.Time,
) ([]availability.Occupied, error) {

	var rows []occupiedRow
	if err := db.
		Table("bookings").
		Select("bookings.barber_id, bookings.start_at, services.duration_min").
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Where(
			"bookings.barber_id = ? AND bookings.status IN ? AND bookings.start_at >= ? AND bookings.start_at < ?",
			barberID, domain.OccupyingStatuses(), start, end,
		).
		Order("bookings.start_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]availability.Occupied, 0, len(rows))
	for _, row := range rows {
		o := availability.Occupied{BarberID: row.BarberID, Start: row.StartAt}
		// serviço não encontrado: o resolver aplica a duração padrão
		if row.DurationMin != nil {
			o.DurationMinutes = *row.DurationMin
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *BookingGormRepository) ListOccupied(
	ctx context.Context,
	barberID uuid.UUID,
	start time.Time,
	end time.Time,
) ([]availability.Occupied, error) {
	return listOccupied(r.db.WithContext(ctx), barberID, start, end)
}

// --------------------------------------------------
// Booking (create)
// --------------------------------------------------

func (r *BookingGormRepository) CreateExclusive(
	ctx context.Context,
	b *models.Booking,
	dayStart time.Time,
	dayEnd time.Time,
	check domain.ConflictCheck,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialises concurrent writers for the same barber until commit.
		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(hashtext(?))",
			"booking:"+b.BarberID.String(),
		).Error; err != nil {
			return err
		}

		existing, err := listOccupied(tx, b.BarberID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Create(b).Error
	})
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uuid.UUID,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Barber").
		Preload("Service").
		First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) SaveTransition(
	ctx context.Context,
	b *models.Booking,
	from domain.Status,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, string(from)).
		Updates(map[string]any{
			"status":       b.Status,
			"confirmed_at": b.ConfirmedAt,
			"completed_at": b.CompletedAt,
			"cancelled_at": b.CancelledAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func (r *BookingGormRepository) FindLatestPendingByPhone(
	ctx context.Context,
	phone string,
	after time.Time,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Barber").
		Preload("Service").
		Where("client_phone = ? AND status = ? AND start_at > ?", phone, string(domain.StatusPending), after).
		Order("created_at DESC").
		First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// --------------------------------------------------
// Report
// --------------------------------------------------

func (r *BookingGormRepository) ListForPeriod(
	ctx context.Context,
	f domain.ReportFilter,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Preload("Barber").
		Preload("Service").
		Where("start_at >= ? AND start_at < ?", f.From, f.To)

	if f.BarberID != nil {
		q = q.Where("barber_id = ?", *f.BarberID)
	}

	var bookings []models.Booking
	if err := q.Order("start_at ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// --------------------------------------------------
// Reminder
// --------------------------------------------------

// ListDueReminders returns pending future bookings that still have attempts
// left and were not messaged since retryBefore.
func (r *BookingGormRepository) ListDueReminders(
	ctx context.Context,
	now time.Time,
	retryBefore time.Time,
	maxAttempts int,
	limit int,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Barber").
		Preload("Service").
		Where("status = ? AND start_at > ? AND confirmation_attempts < ?", string(domain.StatusPending), now, maxAttempts).
		Where("last_confirmation_at IS NULL OR last_confirmation_at < ?", retryBefore).
		Order("start_at ASC").
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ClaimReminder consumes one attempt for the booking if nobody else did
// since seenAttempts was read.
func (r *BookingGormRepository) ClaimReminder(
	ctx context.Context,
	id uuid.UUID,
	seenAttempts int,
	now time.Time,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ? AND confirmation_attempts = ?", id, string(domain.StatusPending), seenAttempts).
		Updates(map[string]any{
			"confirmation_attempts": gorm.Expr("confirmation_attempts + 1"),
			"last_confirmation_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
