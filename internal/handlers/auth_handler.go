package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type AdminStore interface {
	FindAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
}

type AuthHandler struct {
	admins AdminStore
	issuer *auth.Issuer
	audit  *audit.Dispatcher
}

func NewAuthHandler(admins AdminStore, issuer *auth.Issuer, audit *audit.Dispatcher) *AuthHandler {
	return &AuthHandler{admins: admins, issuer: issuer, audit: audit}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      models.AdminUser `json:"user"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	user, err := h.admins.FindAdminByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
		return
	}

	token, session, err := h.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.EntityEvent(session.Actor(), "admin_login", "admin_user", user.ID, nil))

	httpresp.OK(c, LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      *user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.Session(c)

	user, err := h.admins.GetAdmin(c.Request.Context(), session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		httperr.Unauthorized(c, "user_not_found", "Usuário não encontrado.")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"user":       user,
		"expires_at": session.ExpiresAt,
	})
}
