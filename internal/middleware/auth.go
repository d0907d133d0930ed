package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

const ContextSession = "session"

// AuthMiddleware validates the bearer token and stores the resulting
// auth.Session on the request.
func AuthMiddleware(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Abort(c, http.StatusUnauthorized, "missing_authorization_header", "Autenticação necessária.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_authorization_header", "Cabeçalho de autorização inválido.")
			return
		}

		session, err := issuer.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Sessão inválida ou expirada.")
			return
		}

		if err := session.RequireAdmin(); err != nil {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "Acesso negado.")
			return
		}

		c.Set(ContextSession, session)
		c.Next()
	}
}

// Session returns the session stored by AuthMiddleware.
func Session(c *gin.Context) auth.Session {
	if s, ok := c.Get(ContextSession); ok {
		if session, ok := s.(auth.Session); ok {
			return session
		}
	}
	return auth.Session{}
}
