package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/credentials"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/provider"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/resolver"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/logger"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/oauthstate"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/token"
)

type Handler struct {
	providers         *provider.Registry
	flows             oauthstate.Store
	resolver          resolver.Resolver
	credentialService *credentials.Service
	codec             *token.Codec
}

func NewHandler(
	registry *provider.Registry,
	flows oauthstate.Store,
	resolver resolver.Resolver,
	credentialService *credentials.Service,
	codec *token.Codec,
) *Handler {
	return &Handler{
		providers:         registry,
		flows:             flows,
		resolver:          resolver,
		credentialService: credentialService,
		codec:             codec,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	role := store.Role(c.DefaultQuery("role", string(store.RoleCustomer)))
	if role != store.RoleCustomer && role != store.RoleArtisan {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "role must be CUSTOMER or ARTISAN",
		})
		return
	}

	state, err := oauthstate.GenerateState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	verifier, challenge, err := oauthstate.GeneratePKCE()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	flow := oauthstate.Flow{
		State:         state,
		CodeVerifier:  verifier,
		Provider:      providerName,
		RequestedRole: role,
		ExpiresAt:     time.Now().Add(oauthstate.FlowTTL),
	}
	if err := h.flows.Save(c.Request.Context(), flow); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, challenge))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	flow, err := h.flows.Consume(c.Request.Context(), c.Query("state"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve login"})
		return
	}
	if flow == nil || flow.Provider != providerName {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	accessToken, err := p.ExchangeCode(c.Request.Context(), code, flow.CodeVerifier)
	if err != nil {
		logger.Warn("oauth code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	profile, err := p.FetchProfile(c.Request.Context(), accessToken)
	if err != nil {
		logger.Warn("oauth profile fetch failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	user, err := h.resolver.Resolve(c.Request.Context(), profile, flow.RequestedRole)
	if err != nil {
		logger.Error("identity resolution failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

type userResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Name            string     `json:"name"`
	Role            store.Role `json:"role"`
	EmailVerified   bool       `json:"isEmailVerified"`
	PhoneVerified   bool       `json:"isPhoneVerified"`
	ProfileComplete bool       `json:"profileComplete"`
	AvatarURL       string     `json:"avatarUrl,omitempty"`
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *store.User) {
	credential, err := h.codec.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(status, gin.H{
		"token": credential,
		"user": userResponse{
			ID:              user.ID,
			Email:           user.Email,
			Phone:           user.Phone,
			Name:            user.Name,
			Role:            user.Role,
			EmailVerified:   user.EmailVerified,
			PhoneVerified:   user.PhoneVerified,
			ProfileComplete: user.ProfileComplete,
			AvatarURL:       user.AvatarURL,
		},
	})
}
