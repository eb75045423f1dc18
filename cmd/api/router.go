package api

import (
	"net/http"

	"docusense-backend/internal/auth/delivery"
	authUsecase "docusense-backend/internal/auth/usecase"
	ingestDelivery "docusense-backend/internal/ingestion/delivery"
	ingestUsecase "docusense-backend/internal/ingestion/usecase"
	searchDelivery "docusense-backend/internal/search/delivery"
	searchUsecase "docusense-backend/internal/search/usecase"
	subDelivery "docusense-backend/internal/subscription/delivery"
	subUsecase "docusense-backend/internal/subscription/usecase"
	tenantDelivery "docusense-backend/internal/tenant/delivery"
	tenantUsecase "docusense-backend/internal/tenant/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUc authUsecase.AuthUsecase,
	tenantUc tenantUsecase.TenantUsecase,
	subUc subUsecase.SubscriptionUsecase,
	ingestionUc ingestUsecase.IngestionUsecase,
	searchUc searchUsecase.SearchUsecase,
) {
	webhookHandler := ingestDelivery.NewWebhookHandler(ingestionUc)
	searchHandler := searchDelivery.NewSearchHandler(searchUc)
	tenantHandler := tenantDelivery.NewTenantHandler(tenantUc)
	subHandler := subDelivery.NewSubscriptionHandler(subUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Graph webhook endpoint. No bearer auth: Graph authenticates itself
		// through the clientState secret inside each notification, and the
		// validation handshake arrives before any subscription exists.
		api.GET("/webhooks/graph", webhookHandler.HandleNotification)
		api.POST("/webhooks/graph", webhookHandler.HandleNotification)

		// Search routes (protected, tenant-scoped by token)
		search := api.Group("/search")
		search.Use(delivery.AuthMiddleware(authUc))
		{
			search.POST("", searchHandler.Search)
		}

		// Admin routes (protected, admin role required)
		admin := api.Group("/admin")
		admin.Use(delivery.AuthMiddleware(authUc), delivery.RequireAdmin())
		{
			admin.POST("/tenants", tenantHandler.Register)
			admin.GET("/tenants", tenantHandler.List)
			admin.GET("/tenants/:id", tenantHandler.Get)
			admin.PATCH("/tenants/:id/settings", tenantHandler.UpdateSettings)
			admin.POST("/tenants/:id/rotate-secret", tenantHandler.RotateClientState)
			admin.DELETE("/tenants/:id", tenantHandler.Cleanup)

			admin.POST("/subscriptions", subHandler.Provision)
			admin.GET("/subscriptions", subHandler.List)
			admin.DELETE("/subscriptions/:id", subHandler.Delete)
			admin.POST("/subscriptions/sweep", subHandler.RunSweep)
		}
	}
}
