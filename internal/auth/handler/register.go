package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/credentials"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/logger"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role := store.Role(req.Role)
	if role != store.RoleCustomer && role != store.RoleArtisan {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be CUSTOMER or ARTISAN"})
		return
	}

	user, err := h.credentialService.Register(c.Request.Context(), credentials.RegisterInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Name:     req.Name,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		case errors.Is(err, credentials.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Store outages are our failure, not the client's, and
			// driver text stays out of the response body.
			logger.Error("registration failed", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}
