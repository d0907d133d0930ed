package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// SlotFlusher drops cached availability. Booked intervals are derived from
// the service duration, so every entry is stale once a duration changes.
type SlotFlusher interface {
	InvalidateAll(ctx context.Context)
}

type ServiceHandler struct {
	catalog Catalog
	slots   SlotFlusher
	audit   *audit.Dispatcher
}

func NewServiceHandler(catalog Catalog, slots SlotFlusher, audit *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, slots: slots, audit: audit}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"min=0"`
	DurationMin int     `json:"duration_min" binding:"required,min=1"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
	DurationMin *int     `json:"duration_min,omitempty" binding:"omitempty,min=1"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(c, httperr.ErrBusiness("invalid_name"))
		return
	}

	svc := models.Service{
		Name:        name,
		Price:       req.Price,
		DurationMin: req.DurationMin,
		Active:      true,
	}
	if err := h.catalog.CreateService(c.Request.Context(), &svc); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.EntityEvent(middleware.Session(c).Actor(), "service_created", "service", svc.ID, map[string]any{
		"name":         svc.Name,
		"duration_min": svc.DurationMin,
	}))
	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(c, httperr.ErrBusiness("invalid_name"))
			return
		}
		svc.Name = name
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	durationChanged := req.DurationMin != nil && *req.DurationMin != svc.DurationMin
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}

	if err := h.catalog.SaveService(c.Request.Context(), svc); err != nil {
		writeError(c, err)
		return
	}
	if durationChanged && h.slots != nil {
		h.slots.InvalidateAll(c.Request.Context())
	}

	h.audit.Dispatch(audit.EntityEvent(middleware.Session(c).Actor(), "service_updated", "service", svc.ID, nil))
	httpresp.OK(c, svc)
}

func (h *ServiceHandler) SetActive(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	svc.Active = *req.Active
	if err := h.catalog.SaveService(c.Request.Context(), svc); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.EntityEvent(middleware.Session(c).Actor(), "service_active_changed", "service", svc.ID, map[string]any{
		"active": svc.Active,
	}))
	httpresp.OK(c, svc)
}

func (h *ServiceHandler) load(c *gin.Context) (*models.Service, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return nil, false
	}

	svc, err := h.catalog.GetService(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(c, httperr.ErrBusiness("service_not_found"))
		return nil, false
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return svc, true
}
