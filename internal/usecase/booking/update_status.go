package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type UpdateStatus struct {
	repo   domain.Repository
	policy Policy
	cache  SlotCache
	audit  *audit.Dispatcher
	now    func() time.Time
}

func NewUpdateStatus(
	repo domain.Repository,
	policy Policy,
	cache SlotCache,
	audit *audit.Dispatcher,
) *UpdateStatus {
	if cache == nil {
		cache = NoCache{}
	}
	return &UpdateStatus{
		repo:   repo,
		policy: policy,
		cache:  cache,
		audit:  audit,
		now:    time.Now,
	}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	session auth.Session,
	bookingID uuid.UUID,
	status string,
) (*models.Booking, error) {

	if err := session.RequireAdmin(); err != nil {
		return nil, err
	}

	to, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	b, err := findBooking(ctx, uc.repo, bookingID)
	if err != nil {
		return nil, err
	}

	if err := applyTransition(ctx, uc.repo, uc.cache, uc.policy, b, to, uc.now()); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EntityEvent(
		session.Actor(),
		"booking_"+string(to),
		"booking",
		b.ID,
		nil,
	))

	return b, nil
}

// applyTransition changes b's status, persists it guarded by the previous
// status and frees the slot when the booking is cancelled.
func applyTransition(
	ctx context.Context,
	repo domain.Repository,
	cache SlotCache,
	policy Policy,
	b *models.Booking,
	to domain.Status,
	now time.Time,
) error {
	from := domain.Status(b.Status)
	if err := domain.Transition(b, to, now); err != nil {
		return err
	}
	if err := repo.SaveTransition(ctx, b, from); err != nil {
		return err
	}
	if !to.Occupies() {
		day, _ := policy.Zone.Local(b.StartAt)
		cache.Invalidate(ctx, b.BarberID, day)
	}
	return nil
}
