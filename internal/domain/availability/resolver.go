package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// DefaultDurationMinutes stands in for a missing or non-positive service
// duration, both for the requested slot and for existing bookings.
const DefaultDurationMinutes = 30

// Occupied is the part of an existing booking the resolver needs.
// A zero BarberID is treated as belonging to the requested barber.
type Occupied struct {
	BarberID        uuid.UUID
	Start           time.Time
	DurationMinutes int
}

func (o Occupied) Interval() Interval {
	return NewInterval(o.Start, EffectiveDuration(o.DurationMinutes))
}

type Slot struct {
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

type Request struct {
	Day             timezone.Day
	BarberID        uuid.UUID
	DurationMinutes int
	Existing        []Occupied
}

type Resolver struct {
	schedule Schedule
	zone     timezone.Zone
}

func NewResolver(schedule Schedule, zone timezone.Zone) *Resolver {
	return &Resolver{schedule: schedule, zone: zone}
}

func (r *Resolver) Schedule() Schedule { return r.schedule }

func (r *Resolver) Zone() timezone.Zone { return r.zone }

// Resolve marks every candidate slot of the day as available or not. Slots
// are returned in candidate order and none is dropped.
func (r *Resolver) Resolve(req Request) []Slot {
	busy := busyIntervals(req.BarberID, req.Existing)
	duration := EffectiveDuration(req.DurationMinutes)

	slots := make([]Slot, 0, 32)
	for c := range r.schedule.Candidates() {
		candidate := NewInterval(r.zone.Instant(req.Day, c), duration)
		slots = append(slots, Slot{
			Label:     c.String(),
			Available: !overlapsAny(candidate, busy),
		})
	}
	return slots
}

// Conflicts reports whether candidate overlaps any booking of barberID.
func Conflicts(candidate Interval, barberID uuid.UUID, existing []Occupied) bool {
	return overlapsAny(candidate, busyIntervals(barberID, existing))
}

func busyIntervals(barberID uuid.UUID, existing []Occupied) []Interval {
	busy := make([]Interval, 0, len(existing))
	for _, o := range existing {
		if o.BarberID != uuid.Nil && barberID != uuid.Nil && o.BarberID != barberID {
			continue
		}
		busy = append(busy, o.Interval())
	}
	return busy
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}

// EffectiveDuration applies DefaultDurationMinutes to non-positive durations.
func EffectiveDuration(minutes int) int {
	if minutes <= 0 {
		return DefaultDurationMinutes
	}
	return minutes
}
