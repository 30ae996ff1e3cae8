package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/credentials"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/handler"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/provider"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/provider/google"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/resolver"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/config"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/middleware"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/oauthstate"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/token"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	recordStore := store.NewPostgres(infra.DB)
	flowStore := oauthstate.NewRedisStore(infra.Redis.Client)
	identityResolver := resolver.NewStoreResolver(recordStore)
	credentialService := credentials.NewService(recordStore)

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, nil, err
	}

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
	)

	authHandler := handler.NewHandler(
		registry,
		flowStore,
		identityResolver,
		credentialService,
		codec,
	)

	authMiddleware := middleware.NewAuthMiddleware(codec)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(authMiddleware.Authenticate())

	api.GET("/me", func(c *gin.Context) {
		claims, _ := middleware.ClaimsFromContext(c)
		c.JSON(200, gin.H{
			"id":              claims.ID,
			"role":            claims.Role,
			"isEmailVerified": claims.IsEmailVerified,
			"isPhoneVerified": claims.IsPhoneVerified,
			"profileComplete": claims.ProfileComplete,
		})
	})

	artisan := api.Group("/artisan")
	artisan.Use(middleware.ArtisanOnly())
	artisan.GET("/jobs", func(c *gin.Context) {
		c.JSON(200, gin.H{"jobs": []string{}})
	})
	artisan.POST("/portfolio",
		middleware.RequireEmailVerified(),
		middleware.RequireProfileComplete(),
		func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "accepted"})
		})

	customer := api.Group("/customer")
	customer.Use(middleware.CustomerOnly())
	customer.POST("/bookings",
		middleware.RequirePhoneVerified(),
		func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "accepted"})
		})

	admin := api.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/users", func(c *gin.Context) {
		c.JSON(200, gin.H{"users": []string{}})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
