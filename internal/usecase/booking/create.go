package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/messages"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateBookingInput struct {
	BarberID  uuid.UUID
	ServiceID uuid.UUID

	Date string // YYYY-MM-DD
	Time string // HH:mm

	ClientName  string
	ClientPhone string
}

type CreateBookingOutput struct {
	Booking *models.Booking `json:"booking"`
	// BarberLink opens WhatsApp with the new-booking message for the barber.
	BarberLink string `json:"barber_whatsapp_link"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo   domain.Repository
	policy Policy
	cache  SlotCache
	audit  *audit.Dispatcher
	now    func() time.Time
}

func NewCreateBooking(
	repo domain.Repository,
	policy Policy,
	cache SlotCache,
	audit *audit.Dispatcher,
) *CreateBooking {
	if cache == nil {
		cache = NoCache{}
	}
	return &CreateBooking{
		repo:   repo,
		policy: policy,
		cache:  cache,
		audit:  audit,
		now:    time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(ctx context.Context, in CreateBookingInput) (*CreateBookingOutput, error) {
	zone := uc.policy.Zone

	// --------------------------------------------------
	// 1️⃣ Cliente
	// --------------------------------------------------
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		return nil, httperr.ErrBusiness("invalid_name")
	}
	phone, ok := validators.NormalizePhone(in.ClientPhone, uc.policy.CountryCode)
	if !ok {
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	// --------------------------------------------------
	// 2️⃣ Data / hora no timezone da barbearia
	// --------------------------------------------------
	day, err := timezone.ParseDay(in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	clock, err := timezone.ParseClock(in.Time)
	if err != nil || !uc.policy.Schedule.Contains(clock) {
		return nil, httperr.ErrBusiness("invalid_slot")
	}
	if uc.policy.Closed(day) {
		return nil, httperr.ErrBusiness("venue_closed")
	}

	// --------------------------------------------------
	// 3️⃣ Passado / antecedência mínima
	// --------------------------------------------------
	start := zone.Instant(day, clock)
	now := uc.now()
	if start.Before(now) {
		return nil, httperr.ErrBusiness("date_in_past")
	}
	if start.Before(now.Add(uc.policy.MinAdvance)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// 4️⃣ Barbeiro e serviço
	// --------------------------------------------------
	barber, err := activeBarber(ctx, uc.repo, in.BarberID)
	if err != nil {
		return nil, err
	}
	svc, err := activeService(ctx, uc.repo, in.ServiceID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5️⃣ Conflito + criação na mesma transação
	// --------------------------------------------------
	candidate := availability.NewInterval(start, availability.EffectiveDuration(svc.DurationMin))

	b := &models.Booking{
		BarberID:    barber.ID,
		ServiceID:   svc.ID,
		StartAt:     start,
		ClientName:  name,
		ClientPhone: phone,
		Status:      string(domain.InitialStatus()),
	}

	dayStart, dayEnd := zone.DayBounds(day)
	err = uc.repo.CreateExclusive(ctx, b, dayStart, dayEnd, func(existing []availability.Occupied) error {
		if availability.Conflicts(candidate, barber.ID, existing) {
			return httperr.ErrBusiness("time_conflict")
		}
		return nil
	})
	if err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			uc.audit.Dispatch(audit.Event{
				Action: "booking_conflict",
				Entity: "booking",
				Metadata: map[string]any{
					"barber_id": barber.ID,
					"start":     start,
				},
			})
		}
		return nil, err
	}

	b.Barber = *barber
	b.Service = *svc

	uc.cache.Invalidate(ctx, barber.ID, day)

	// --------------------------------------------------
	// 6️⃣ Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.EntityEvent(nil, "booking_created", "booking", b.ID, map[string]any{
		"barber_id":  barber.ID,
		"service_id": svc.ID,
		"start":      start,
	}))

	return &CreateBookingOutput{
		Booking:    b,
		BarberLink: barberLink(b, zone, uc.policy.CountryCode),
	}, nil
}

func barberLink(b *models.Booking, zone timezone.Zone, countryCode string) string {
	phone, ok := validators.NormalizePhone(b.Barber.Phone, countryCode)
	if !ok {
		return ""
	}
	return messages.DeepLink(phone, messages.NewBookingForBarber(messages.For(b, zone.Location())))
}
