package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

type memoryCatalog struct {
	mu       sync.Mutex
	barbers  []models.Barber
	services []models.Service
}

func (m *memoryCatalog) ListBarbers(_ context.Context, activeOnly bool) ([]models.Barber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Barber
	for _, b := range m.barbers {
		if !activeOnly || b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryCatalog) GetBarber(_ context.Context, id uuid.UUID) (*models.Barber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.barbers, func(b models.Barber) bool { return b.ID == id })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	b := m.barbers[i]
	return &b, nil
}

func (m *memoryCatalog) CreateBarber(_ context.Context, b *models.Barber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.barbers = append(m.barbers, *b)
	return nil
}

func (m *memoryCatalog) SaveBarber(_ context.Context, b *models.Barber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.barbers {
		if m.barbers[i].ID == b.ID {
			m.barbers[i] = *b
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryCatalog) ListServices(_ context.Context, activeOnly bool) ([]models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Service
	for _, s := range m.services {
		if !activeOnly || s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryCatalog) GetService(_ context.Context, id uuid.UUID) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.services, func(s models.Service) bool { return s.ID == id })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	s := m.services[i]
	return &s, nil
}

func (m *memoryCatalog) CreateService(_ context.Context, s *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.services = append(m.services, *s)
	return nil
}

func (m *memoryCatalog) SaveService(_ context.Context, s *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.services {
		if m.services[i].ID == s.ID {
			m.services[i] = *s
			return nil
		}
	}
	return domain.ErrNotFound
}

// --------------------------------------------------
// Use cases
// --------------------------------------------------

type availabilityFunc func(context.Context, ucBooking.AvailabilityInput) (*ucBooking.AvailabilityOutput, error)

func (f availabilityFunc) Execute(ctx context.Context, in ucBooking.AvailabilityInput) (*ucBooking.AvailabilityOutput, error) {
	return f(ctx, in)
}

type createFunc func(context.Context, ucBooking.CreateBookingInput) (*ucBooking.CreateBookingOutput, error)

func (f createFunc) Execute(ctx context.Context, in ucBooking.CreateBookingInput) (*ucBooking.CreateBookingOutput, error) {
	return f(ctx, in)
}

type reportFunc func(context.Context, auth.Session, ucBooking.ReportInput) (*dto.BookingReportDTO, error)

func (f reportFunc) Execute(ctx context.Context, s auth.Session, in ucBooking.ReportInput) (*dto.BookingReportDTO, error) {
	return f(ctx, s, in)
}

type statusFunc func(context.Context, auth.Session, uuid.UUID, string) (*models.Booking, error)

func (f statusFunc) Execute(ctx context.Context, s auth.Session, id uuid.UUID, status string) (*models.Booking, error) {
	return f(ctx, s, id, status)
}

type replyFunc func(context.Context, string, string) (*ucBooking.ReplyOutput, error)

func (f replyFunc) Execute(ctx context.Context, from, text string) (*ucBooking.ReplyOutput, error) {
	return f(ctx, from, text)
}

// --------------------------------------------------
// Admins
// --------------------------------------------------

type memoryAdmins struct {
	users []models.AdminUser
}

func (m *memoryAdmins) FindAdminByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryAdmins) GetAdmin(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}
