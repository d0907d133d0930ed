package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

// ======================================================
// DEPENDENCIES
// ======================================================

// Catalog is the barber and service store used by the public and admin
// handlers. Lookups of unknown ids return booking.ErrNotFound.
type Catalog interface {
	ListBarbers(ctx context.Context, activeOnly bool) ([]models.Barber, error)
	GetBarber(ctx context.Context, id uuid.UUID) (*models.Barber, error)
	CreateBarber(ctx context.Context, b *models.Barber) error
	SaveBarber(ctx context.Context, b *models.Barber) error

	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	CreateService(ctx context.Context, s *models.Service) error
	SaveService(ctx context.Context, s *models.Service) error
}

type AvailabilityFinder interface {
	Execute(ctx context.Context, in ucBooking.AvailabilityInput) (*ucBooking.AvailabilityOutput, error)
}

type BookingCreator interface {
	Execute(ctx context.Context, in ucBooking.CreateBookingInput) (*ucBooking.CreateBookingOutput, error)
}

// ======================================================
// HANDLER
// ======================================================

type PublicHandler struct {
	venue        config.Venue
	catalog      Catalog
	availability AvailabilityFinder
	create       BookingCreator
	metrics      *metrics.Metrics
}

func NewPublicHandler(
	venue config.Venue,
	catalog Catalog,
	availability AvailabilityFinder,
	create BookingCreator,
	m *metrics.Metrics,
) *PublicHandler {
	return &PublicHandler{
		venue:        venue,
		catalog:      catalog,
		availability: availability,
		create:       create,
		metrics:      m,
	}
}

// ======================================================
// RESPONSES
// ======================================================

type VenueResponse struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Timezone       string   `json:"timezone"`
	ClosedWeekdays []int    `json:"closed_weekdays"`
	Slots          []string `json:"slots"`
}

type PublicBarber struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Specialties []string  `json:"specialties"`
	PhotoURL    string    `json:"photo_url"`
}

type PublicService struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	DurationMin int       `json:"duration_min"`
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	BarberID    uuid.UUID `json:"barber_id" binding:"required"`
	ServiceID   uuid.UUID `json:"service_id" binding:"required"`
	Date        string    `json:"date" binding:"required"`
	Time        string    `json:"time" binding:"required"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
}

// ======================================================
// VENUE / CATALOG
// ======================================================

func (h *PublicHandler) Venue(c *gin.Context) {
	closed := h.venue.ClosedWeekdays
	if closed == nil {
		closed = []int{}
	}

	httpresp.OK(c, VenueResponse{
		Name:           h.venue.Name,
		Address:        h.venue.Address,
		Phone:          h.venue.Phone,
		Timezone:       h.venue.Timezone,
		ClosedWeekdays: closed,
		Slots:          h.venue.Schedule().Labels(),
	})
}

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	barbers, err := h.catalog.ListBarbers(c.Request.Context(), true)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]PublicBarber, 0, len(barbers))
	for _, b := range barbers {
		specialties := []string(b.Specialties)
		if specialties == nil {
			specialties = []string{}
		}
		out = append(out, PublicBarber{
			ID:          b.ID,
			Name:        b.Name,
			Specialties: specialties,
			PhotoURL:    b.PhotoURL,
		})
	}
	httpresp.List(c, out)
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context(), true)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]PublicService, 0, len(services))
	for _, s := range services {
		out = append(out, PublicService{
			ID:          s.ID,
			Name:        s.Name,
			Price:       s.Price,
			DurationMin: s.DurationMin,
		})
	}
	httpresp.List(c, out)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *PublicHandler) Availability(c *gin.Context) {
	barberID, err := uuid.Parse(c.Query("barber_id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
		return
	}
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), ucBooking.AvailabilityInput{
		BarberID:  barberID,
		ServiceID: serviceID,
		Date:      c.Query("date"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, out)
}

// ======================================================
// CREATE BOOKING
// ======================================================

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	out, err := h.create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		BarberID:    req.BarberID,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		Time:        req.Time,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
	})
	if err != nil {
		if httperr.IsBusiness(err, "time_conflict") && h.metrics != nil {
			h.metrics.BookingConflicts.Inc()
		}
		writeError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.BookingsCreated.Inc()
	}
	c.JSON(http.StatusCreated, out)
}
