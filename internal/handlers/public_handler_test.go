package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

func publicRouter(h *PublicHandler) *gin.Engine {
	r := gin.New()
	r.GET("/venue", h.Venue)
	r.GET("/barbers", h.ListBarbers)
	r.GET("/services", h.ListServices)
	r.GET("/availability", h.Availability)
	r.POST("/bookings", h.CreateBooking)
	return r
}

func TestVenue(t *testing.T) {
	venue := config.DefaultVenue()
	venue.Name = "Barbearia Central"
	r := publicRouter(NewPublicHandler(venue, &memoryCatalog{}, nil, nil, nil))

	w := do(r, http.MethodGet, "/venue", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got VenueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Barbearia Central", got.Name)
	assert.Equal(t, "America/Sao_Paulo", got.Timezone)
	assert.Equal(t, []int{0}, got.ClosedWeekdays)
	assert.Len(t, got.Slots, 17)
	assert.Equal(t, "09:00", got.Slots[0])
}

func TestListBarbersOnlyActive(t *testing.T) {
	catalog := &memoryCatalog{barbers: []models.Barber{
		{ID: uuid.New(), Name: "Carlos", Active: true, Specialties: pq.StringArray{"degradê"}},
		{ID: uuid.New(), Name: "Pedro", Active: false},
	}}
	r := publicRouter(NewPublicHandler(config.DefaultVenue(), catalog, nil, nil, nil))

	w := do(r, http.MethodGet, "/barbers", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Data  []PublicBarber `json:"data"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, 1, got.Total)
	assert.Equal(t, "Carlos", got.Data[0].Name)
	assert.Equal(t, []string{"degradê"}, got.Data[0].Specialties)
}

func TestListServicesOnlyActive(t *testing.T) {
	catalog := &memoryCatalog{services: []models.Service{
		{ID: uuid.New(), Name: "Corte", Price: 40, DurationMin: 30, Active: true},
		{ID: uuid.New(), Name: "Antigo", Price: 10, DurationMin: 15, Active: false},
	}}
	r := publicRouter(NewPublicHandler(config.DefaultVenue(), catalog, nil, nil, nil))

	w := do(r, http.MethodGet, "/services", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Corte"`)
	assert.NotContains(t, w.Body.String(), "Antigo")
}

func TestAvailability(t *testing.T) {
	barberID, serviceID := uuid.New(), uuid.New()

	var seen ucBooking.AvailabilityInput
	finder := availabilityFunc(func(_ context.Context, in ucBooking.AvailabilityInput) (*ucBooking.AvailabilityOutput, error) {
		seen = in
		if in.Date == "2026-03-08" {
			return nil, httperr.ErrBusiness("date_in_past")
		}
		return &ucBooking.AvailabilityOutput{
			Date:      in.Date,
			BarberID:  in.BarberID,
			ServiceID: in.ServiceID,
			Slots:     []availability.Slot{{Label: "09:00", Available: true}},
		}, nil
	})
	r := publicRouter(NewPublicHandler(config.DefaultVenue(), &memoryCatalog{}, finder, nil, nil))

	t.Run("ok", func(t *testing.T) {
		w := do(r, http.MethodGet, "/availability?barber_id="+barberID.String()+"&service_id="+serviceID.String()+"&date=2026-03-10", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2026-03-10", seen.Date)
		assert.Equal(t, barberID, seen.BarberID)
		assert.Contains(t, w.Body.String(), `{"label":"09:00","available":true}`)
	})

	t.Run("bad barber id", func(t *testing.T) {
		w := do(r, http.MethodGet, "/availability?barber_id=x&service_id="+serviceID.String()+"&date=2026-03-10", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_barber_id")
	})

	t.Run("business error", func(t *testing.T) {
		w := do(r, http.MethodGet, "/availability?barber_id="+barberID.String()+"&service_id="+serviceID.String()+"&date=2026-03-08", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error_code":"date_in_past"`)
	})
}

func TestCreateBooking(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	barberID, serviceID := uuid.New(), uuid.New()

	creator := createFunc(func(_ context.Context, in ucBooking.CreateBookingInput) (*ucBooking.CreateBookingOutput, error) {
		switch in.Time {
		case "10:00":
			return nil, httperr.ErrBusiness("time_conflict")
		case "11:00":
			return nil, errors.New("database down")
		}
		return &ucBooking.CreateBookingOutput{
			Booking:    &models.Booking{ID: uuid.New(), BarberID: in.BarberID, ClientName: in.ClientName, Status: "pending"},
			BarberLink: "https://wa.me/5511988887777?text=oi",
		}, nil
	})
	r := publicRouter(NewPublicHandler(config.DefaultVenue(), &memoryCatalog{}, nil, creator, m))

	body := func(clock string) string {
		return `{"barber_id":"` + barberID.String() + `","service_id":"` + serviceID.String() +
			`","date":"2026-03-10","time":"` + clock + `","client_name":"Ana","client_phone":"11 98888-7777"}`
	}

	w := do(r, http.MethodPost, "/bookings", body("09:00"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"barber_whatsapp_link":"https://wa.me/5511988887777?text=oi"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated))

	w = do(r, http.MethodPost, "/bookings", body("10:00"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"time_conflict"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConflicts))

	w = do(r, http.MethodPost, "/bookings", body("11:00"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database down")

	w = do(r, http.MethodPost, "/bookings", `{"barber_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated))
}

func TestWriteErrorUnknownBusinessCode(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { writeError(c, httperr.ErrBusiness("something_new")) })

	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "something_new")
}

func TestWriteErrorForbidden(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { writeError(c, httperr.ErrBusiness("forbidden")) })

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/", "").Code)
}
