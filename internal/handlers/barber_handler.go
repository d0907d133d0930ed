package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/storage"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type BarberHandler struct {
	catalog     Catalog
	photos      storage.PhotoStore
	audit       *audit.Dispatcher
	countryCode string
}

// NewBarberHandler builds the admin barber handler. A nil photos store
// disables photo uploads.
func NewBarberHandler(
	catalog Catalog,
	photos storage.PhotoStore,
	audit *audit.Dispatcher,
	countryCode string,
) *BarberHandler {
	return &BarberHandler{
		catalog:     catalog,
		photos:      photos,
		audit:       audit,
		countryCode: countryCode,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBarberRequest struct {
	Name        string   `json:"name" binding:"required"`
	Phone       string   `json:"phone" binding:"required"`
	Specialties []string `json:"specialties"`
}

type UpdateBarberRequest struct {
	Name        *string   `json:"name,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Specialties *[]string `json:"specialties,omitempty"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ======================================================
// HANDLERS
// ======================================================

func (h *BarberHandler) List(c *gin.Context) {
	barbers, err := h.catalog.ListBarbers(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, barbers)
}

func (h *BarberHandler) Create(c *gin.Context) {
	var req CreateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(c, httperr.ErrBusiness("invalid_name"))
		return
	}
	phone, ok := validators.NormalizePhone(req.Phone, h.countryCode)
	if !ok {
		writeError(c, httperr.ErrBusiness("invalid_phone"))
		return
	}

	barber := models.Barber{
		Name:        name,
		Phone:       phone,
		Active:      true,
		Specialties: cleanSpecialties(req.Specialties),
	}
	if err := h.catalog.CreateBarber(c.Request.Context(), &barber); err != nil {
		writeError(c, err)
		return
	}

	session := middleware.Session(c)
	h.audit.Dispatch(audit.EntityEvent(session.Actor(), "barber_created", "barber", barber.ID, map[string]any{
		"name": barber.Name,
	}))

	c.JSON(http.StatusCreated, barber)
}

func (h *BarberHandler) Update(c *gin.Context) {
	barber, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateBarberRequest
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
		barber.Name = name
	}
	if req.Phone != nil {
		phone, ok := validators.NormalizePhone(*req.Phone, h.countryCode)
		if !ok {
			writeError(c, httperr.ErrBusiness("invalid_phone"))
			return
		}
		barber.Phone = phone
	}
	if req.Specialties != nil {
		barber.Specialties = cleanSpecialties(*req.Specialties)
	}

	if err := h.catalog.SaveBarber(c.Request.Context(), barber); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.EntityEvent(middleware.Session(c).Actor(), "barber_updated", "barber", barber.ID, nil))
	httpresp.OK(c, barber)
}

func (h *BarberHandler) SetActive(c *gin.Context) {
	barber, ok := h.load(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	barber.Active = *req.Active
	if err := h.catalog.SaveBarber(c.Request.Context(), barber); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.EntityEvent(middleware.Session(c).Actor(), "barber_active_changed", "barber", barber.ID, map[string]any{
		"active": barber.Active,
	}))
	httpresp.OK(c, barber)
}

// ======================================================
// PHOTO
// ======================================================

func (h *BarberHandler) UploadPhoto(c *gin.Context) {
	if h.photos == nil {
		httperr.ServiceUnavailable(c, "photo_storage_disabled", "Armazenamento de fotos não configurado.")
		return
	}

	barber, ok := h.load(c)
	if !ok {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "Envie a foto no campo \"photo\".")
		return
	}
	if file.Size > storage.MaxPhotoBytes {
		httperr.BadRequest(c, "photo_too_large", "A foto deve ter no máximo 5 MB.")
		return
	}

	f, err := file.Open()
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "Não foi possível ler a foto.")
		return
	}
	defer f.Close()

	data, err := storage.ProcessPhoto(f)
	if errors.Is(err, storage.ErrImageTooLarge) {
		httperr.BadRequest(c, "photo_too_large", "A foto tem resolução grande demais.")
		return
	}
	if errors.Is(err, storage.ErrUnsupportedImage) {
		httperr.BadRequest(c, "unsupported_image", "Formato de imagem não suportado.")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	key := fmt.Sprintf("barbers/%s/%s.webp", barber.ID, uuid.NewString())
	url, err := h.photos.Put(c.Request.Context(), key, data, "image/webp")
	if err != nil {
		writeError(c, fmt.Errorf("upload photo: %w", err))
		return
	}

	barber.PhotoURL = url
	if err := h.catalog.SaveBarber(c.Request.Context(), barber); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.EntityEvent(middleware.Session(c).Actor(), "barber_photo_updated", "barber", barber.ID, map[string]any{
		"key": key,
	}))
	httpresp.OK(c, barber)
}

// ======================================================
// HELPERS
// ======================================================

func (h *BarberHandler) load(c *gin.Context) (*models.Barber, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
		return nil, false
	}

	barber, err := h.catalog.GetBarber(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(c, httperr.ErrBusiness("barber_not_found"))
		return nil, false
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return barber, true
}

func cleanSpecialties(in []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
