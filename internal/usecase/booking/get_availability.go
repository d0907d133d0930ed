package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type AvailabilityInput struct {
	BarberID  uuid.UUID
	ServiceID uuid.UUID
	Date      string
}

type AvailabilityOutput struct {
	Date        string              `json:"date"`
	BarberID    uuid.UUID           `json:"barber_id"`
	ServiceID   uuid.UUID           `json:"service_id"`
	DurationMin int                 `json:"duration_min"`
	Closed      bool                `json:"closed"`
	Slots       []availability.Slot `json:"slots"`
}

// ======================================================
// USE CASE
// ======================================================

type GetAvailability struct {
	repo     domain.Repository
	resolver *availability.Resolver
	policy   Policy
	cache    SlotCache
	now      func() time.Time
}

func NewGetAvailability(repo domain.Repository, policy Policy, cache SlotCache) *GetAvailability {
	if cache == nil {
		cache = NoCache{}
	}
	return &GetAvailability{
		repo:     repo,
		resolver: availability.NewResolver(policy.Schedule, policy.Zone),
		policy:   policy,
		cache:    cache,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *GetAvailability) Execute(ctx context.Context, in AvailabilityInput) (*AvailabilityOutput, error) {
	zone := uc.policy.Zone

	// --------------------------------------------------
	// 1️⃣ Data no timezone da barbearia
	// --------------------------------------------------
	day, err := timezone.ParseDay(in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	now := uc.now()
	today := zone.Today(now)
	if day.Before(today) {
		return nil, httperr.ErrBusiness("date_in_past")
	}

	// --------------------------------------------------
	// 2️⃣ Serviço e barbeiro
	// --------------------------------------------------
	svc, err := activeService(ctx, uc.repo, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if _, err := activeBarber(ctx, uc.repo, in.BarberID); err != nil {
		return nil, err
	}

	duration := availability.EffectiveDuration(svc.DurationMin)
	out := &AvailabilityOutput{
		Date:        day.String(),
		BarberID:    in.BarberID,
		ServiceID:   in.ServiceID,
		DurationMin: duration,
	}

	// --------------------------------------------------
	// 3️⃣ Dia fechado
	// --------------------------------------------------
	if uc.policy.Closed(day) {
		out.Closed = true
		for c := range uc.policy.Schedule.Candidates() {
			out.Slots = append(out.Slots, availability.Slot{Label: c.String()})
		}
		return out, nil
	}

	// --------------------------------------------------
	// 4️⃣ Agendamentos existentes + resolução
	// --------------------------------------------------
	slots, version, ok := uc.cache.Get(ctx, in.BarberID, day, duration)
	if !ok {
		start, end := zone.DayBounds(day)
		existing, err := uc.repo.ListOccupied(ctx, in.BarberID, start, end)
		if err != nil {
			return nil, fmt.Errorf("list occupied: %w", err)
		}

		slots = uc.resolver.Resolve(availability.Request{
			Day:             day,
			BarberID:        in.BarberID,
			DurationMinutes: duration,
			Existing:        existing,
		})
		uc.cache.Set(ctx, in.BarberID, day, duration, version, slots)
	}

	// --------------------------------------------------
	// 5️⃣ Antecedência mínima (somente hoje)
	// --------------------------------------------------
	out.Slots = make([]availability.Slot, len(slots))
	copy(out.Slots, slots)

	if day == today {
		earliest := now.Add(uc.policy.MinAdvance)
		for i, s := range out.Slots {
			c, err := timezone.ParseClock(s.Label)
			if err != nil {
				continue
			}
			if zone.Instant(day, c).Before(earliest) {
				out.Slots[i].Available = false
			}
		}
	}

	return out, nil
}
