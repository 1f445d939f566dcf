// internal/router/router.go
package router

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport-backend/internal/config"
	"github.com/javajoker/autoimport-backend/internal/handlers"
	"github.com/javajoker/autoimport-backend/internal/metrics"
	"github.com/javajoker/autoimport-backend/internal/middleware"
	"github.com/javajoker/autoimport-backend/internal/pdf"
	"github.com/javajoker/autoimport-backend/internal/render"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	provider, err := render.LoadProvider(cfg.ProviderFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}

	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize services
	notificationService := services.NewNotificationService(cfg.Email, cfg.Frontend)
	identityService := services.NewIdentityService(db)
	contractService := services.NewContractService(db, identityService)
	exporter := services.NewContractExporter(contractService, pdf.New(cfg.PDF), storageService, provider, cfg.Storage.URLExpiry())
	boards := services.NewBoardRegistry(contractService, exporter)
	authService := services.NewAuthService(db, cfg.JWT)
	carRequestService := services.NewCarRequestService(db, notificationService)
	adminService := services.NewAdminService(db)
	userService := services.NewUserService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService, boards)
	contractHandler := handlers.NewContractHandler(boards, exporter)
	identityHandler := handlers.NewIdentityHandler(identityService)
	carRequestHandler := handlers.NewCarRequestHandler(carRequestService)
	adminHandler := handlers.NewAdminHandler(adminService)
	healthHandler := handlers.NewHealthHandler(db)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Frontend.Origins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Locally archived exports
	if cfg.Storage.Driver != "s3" && cfg.Storage.Driver != "minio" {
		uploads := r.Group("/uploads", middleware.AuthRequired(), middleware.AdminRequired())
		uploads.Static("/", cfg.Storage.LocalPath)
	}

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.AuthRateLimit(), authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
			auth.PUT("/password", middleware.AuthRequired(), authHandler.ChangePassword)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/clients", adminHandler.GetClients)
			admin.PUT("/clients/:id/status", adminHandler.UpdateClientStatus)

			contracts := admin.Group("/contracts")
			{
				contracts.GET("", contractHandler.List)
				contracts.POST("", contractHandler.Create)
				contracts.GET("/form/defaults", contractHandler.FormDefaults)
				contracts.DELETE("/selection", contractHandler.CloseDetail)
				contracts.DELETE("/selection/signature", contractHandler.CancelSignature)
				contracts.GET("/:id", contractHandler.Get)
				contracts.PUT("/:id", contractHandler.Update)
				contracts.DELETE("/:id", contractHandler.Delete)
				contracts.POST("/:id/sign", contractHandler.Sign)
				contracts.POST("/:id/send", contractHandler.Send)
				contracts.POST("/:id/client-sign", contractHandler.ClientSign)
				contracts.GET("/:id/preview", contractHandler.Preview)
				contracts.POST("/:id/export", middleware.ExportRateLimit(), contractHandler.Export)
			}

			identity := admin.Group("/identity")
			{
				identity.GET("/:userId", identityHandler.Lookup)
				identity.PUT("/:userId", identityHandler.Upsert)
			}

			carRequests := admin.Group("/car-requests")
			{
				carRequests.GET("", carRequestHandler.List)
				carRequests.GET("/:id", carRequestHandler.Get)
				carRequests.PUT("/:id", carRequestHandler.Update)
				carRequests.POST("/:id/send-offer", carRequestHandler.SendOffer)
			}
		}
	}

	return r, nil
}
