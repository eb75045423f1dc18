package api

import (
	authUsecase "docusense-backend/internal/auth/usecase"
	ingestUsecasePkg "docusense-backend/internal/ingestion/usecase"
	searchUsecasePkg "docusense-backend/internal/search/usecase"
	subUsecasePkg "docusense-backend/internal/subscription/usecase"
	tenantUsecasePkg "docusense-backend/internal/tenant/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase      authUsecase.AuthUsecase
	tenantUsecase    tenantUsecasePkg.TenantUsecase
	subUsecase       subUsecasePkg.SubscriptionUsecase
	ingestionUsecase ingestUsecasePkg.IngestionUsecase
	searchUsecase    searchUsecasePkg.SearchUsecase
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	tenantUc tenantUsecasePkg.TenantUsecase,
	subUc subUsecasePkg.SubscriptionUsecase,
	ingestionUc ingestUsecasePkg.IngestionUsecase,
	searchUc searchUsecasePkg.SearchUsecase,
) *Handler {
	return &Handler{
		authUsecase:      authUc,
		tenantUsecase:    tenantUc,
		subUsecase:       subUc,
		ingestionUsecase: ingestionUc,
		searchUsecase:    searchUc,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.tenantUsecase, h.subUsecase, h.ingestionUsecase, h.searchUsecase)

	return r.Run(addr)
}
