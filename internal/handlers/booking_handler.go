package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingReporter interface {
	Execute(ctx context.Context, session auth.Session, in ucBooking.ReportInput) (*dto.BookingReportDTO, error)
}

type StatusUpdater interface {
	Execute(ctx context.Context, session auth.Session, bookingID uuid.UUID, status string) (*models.Booking, error)
}

type BookingHandler struct {
	report  BookingReporter
	status  StatusUpdater
	metrics *metrics.Metrics
}

func NewBookingHandler(report BookingReporter, status StatusUpdater, m *metrics.Metrics) *BookingHandler {
	return &BookingHandler{report: report, status: status, metrics: m}
}

// ======================================================
// REQUESTS
// ======================================================

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// REPORT
// ======================================================

func (h *BookingHandler) Report(c *gin.Context) {
	in := ucBooking.ReportInput{
		From: c.Query("from"),
		To:   c.Query("to"),
	}

	if raw := c.Query("barber_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
			return
		}
		in.BarberID = &id
	}

	out, err := h.report.Execute(c.Request.Context(), middleware.Session(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, out)
}

// ======================================================
// STATUS
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Agendamento inválido.")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.status.Execute(c.Request.Context(), middleware.Session(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.StatusChanges.WithLabelValues(b.Status, "admin").Inc()
	}
	httpresp.OK(c, b)
}
