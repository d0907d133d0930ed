package booking

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// memoryRepo is an in-memory domain.Repository. A single mutex stands in for
// the per-barber advisory lock.
type memoryRepo struct {
	mu       sync.Mutex
	barbers  map[uuid.UUID]models.Barber
	services map[uuid.UUID]models.Service
	bookings []models.Booking

	occupiedErr error
	occupiedHit int
	// afterOccupied runs once the occupied list is read, standing in for a
	// concurrent writer.
	afterOccupied func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		barbers:  map[uuid.UUID]models.Barber{},
		services: map[uuid.UUID]models.Service{},
	}
}

func (r *memoryRepo) addBarber(name, phone string) models.Barber {
	b := models.Barber{ID: uuid.New(), Name: name, Phone: phone, Active: true}
	r.barbers[b.ID] = b
	return b
}

func (r *memoryRepo) addService(name string, price float64, minutes int) models.Service {
	s := models.Service{ID: uuid.New(), Name: name, Price: price, DurationMin: minutes, Active: true}
	r.services[s.ID] = s
	return s
}

func (r *memoryRepo) addBooking(b models.Booking) models.Booking {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = string(domain.StatusPending)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.bookings = append(r.bookings, b)
	return b
}

func (r *memoryRepo) GetActiveBarber(_ context.Context, id uuid.UUID) (*models.Barber, error) {
	b, ok := r.barbers[id]
	if !ok || !b.Active {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *memoryRepo) GetActiveService(_ context.Context, id uuid.UUID) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok || !s.Active {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepo) ListOccupied(_ context.Context, barberID uuid.UUID, start, end time.Time) ([]availability.Occupied, error) {
	r.mu.Lock()
	r.occupiedHit++
	if r.occupiedErr != nil {
		r.mu.Unlock()
		return nil, r.occupiedErr
	}
	out := r.occupiedLocked(barberID, start, end)
	r.mu.Unlock()

	if r.afterOccupied != nil {
		r.afterOccupied()
	}
	return out, nil
}

func (r *memoryRepo) occupiedLocked(barberID uuid.UUID, start, end time.Time) []availability.Occupied {
	var out []availability.Occupied
	for _, b := range r.bookings {
		if b.BarberID != barberID || !domain.Status(b.Status).Occupies() {
			continue
		}
		if b.StartAt.Before(start) || !b.StartAt.Before(end) {
			continue
		}
		out = append(out, availability.Occupied{
			BarberID:        b.BarberID,
			Start:           b.StartAt,
			DurationMinutes: r.services[b.ServiceID].DurationMin,
		})
	}
	return out
}

func (r *memoryRepo) CreateExclusive(_ context.Context, b *models.Booking, dayStart, dayEnd time.Time, check domain.ConflictCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := check(r.occupiedLocked(b.BarberID, dayStart, dayEnd)); err != nil {
		return err
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	r.bookings = append(r.bookings, *b)
	return nil
}

func (r *memoryRepo) GetBooking(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			return r.hydrate(b), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) SaveTransition(_ context.Context, b *models.Booking, from domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].ID != b.ID {
			continue
		}
		if r.bookings[i].Status != string(from) {
			return httperr.ErrBusiness("invalid_state")
		}
		r.bookings[i].Status = b.Status
		r.bookings[i].ConfirmedAt = b.ConfirmedAt
		r.bookings[i].CompletedAt = b.CompletedAt
		r.bookings[i].CancelledAt = b.CancelledAt
		return nil
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) FindLatestPendingByPhone(_ context.Context, phone string, after time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.Booking
	for _, b := range r.bookings {
		if b.ClientPhone != phone || b.Status != string(domain.StatusPending) || !b.StartAt.After(after) {
			continue
		}
		if found == nil || b.CreatedAt.After(found.CreatedAt) {
			found = r.hydrate(b)
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (r *memoryRepo) ListForPeriod(_ context.Context, f domain.ReportFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.StartAt.Before(f.From) || !b.StartAt.Before(f.To) {
			continue
		}
		if f.BarberID != nil && b.BarberID != *f.BarberID {
			continue
		}
		out = append(out, *r.hydrate(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *memoryRepo) hydrate(b models.Booking) *models.Booking {
	b.Barber = r.barbers[b.BarberID]
	b.Service = r.services[b.ServiceID]
	return &b
}

func (r *memoryRepo) statusOf(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.bookings, func(b models.Booking) bool { return b.ID == id })
	if i < 0 {
		return ""
	}
	return r.bookings[i].Status
}

// memoryCache records invalidations and versions entries like the Redis
// cache does.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]availability.Slot
	gens        map[string]int
	invalidated []string
	staleSets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]availability.Slot{}, gens: map[string]int{}}
}

func cacheKey(barberID uuid.UUID, day timezone.Day) string {
	return barberID.String() + "|" + day.String()
}

func (c *memoryCache) Get(_ context.Context, barberID uuid.UUID, day timezone.Day, _ int) ([]availability.Slot, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(barberID, day)
	s, ok := c.entries[k]
	return s, strconv.Itoa(c.gens[k]), ok
}

func (c *memoryCache) Set(_ context.Context, barberID uuid.UUID, day timezone.Day, _ int, version string, slots []availability.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(barberID, day)
	if version != strconv.Itoa(c.gens[k]) {
		c.staleSets++
		return
	}
	c.entries[k] = slots
}

func (c *memoryCache) Invalidate(_ context.Context, barberID uuid.UUID, day timezone.Day) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(barberID, day)
	delete(c.entries, k)
	c.gens[k]++
	c.invalidated = append(c.invalidated, k)
}

func (c *memoryCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		delete(c.entries, k)
		c.gens[k]++
	}
}
