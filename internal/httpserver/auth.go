package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shekinah-backend/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login error bodies carry the exact messages the storefront shows.
const (
	msgBadCredentials = "Correo o contraseña incorrectos."
	msgRateLimited    = "Demasiados intentos. Espera unos minutos."
	msgConnection     = "Error de conexión. Revisa tu internet."
)

func loginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgBadCredentials})
			return
		}
		token, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"token": token, "role": string(auth.RoleAdmin)})
		case errors.Is(err, auth.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": msgRateLimited})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgConnection})
		}
	}
}

func logoutHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if ok && token != "" {
			svc.Logout(token)
		}
		c.Status(http.StatusNoContent)
	}
}
