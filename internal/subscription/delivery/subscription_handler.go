package delivery

import (
	"net/http"

	"docusense-backend/internal/subscription/usecase"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subUsecase usecase.SubscriptionUsecase
}

func NewSubscriptionHandler(subUsecase usecase.SubscriptionUsecase) *SubscriptionHandler {
	return &SubscriptionHandler{
		subUsecase: subUsecase,
	}
}

type provisionRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	DriveID  string `json:"drive_id" binding:"required"`
}

func (h *SubscriptionHandler) Provision(c *gin.Context) {
	var req provisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id and drive_id are required"})
		return
	}

	sub, err := h.subUsecase.Provision(c.Request.Context(), req.TenantID, req.DriveID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	if tenantID := c.Query("tenant_id"); tenantID != "" {
		views, err := h.subUsecase.ListForTenant(tenantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscriptions": views})
		return
	}

	views, err := h.subUsecase.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": views})
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.subUsecase.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscription deleted"})
}

// RunSweep triggers a renewal sweep on demand, outside the scheduler.
func (h *SubscriptionHandler) RunSweep(c *gin.Context) {
	result, err := h.subUsecase.RunRenewalSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.Skipped {
		c.JSON(http.StatusConflict, gin.H{"message": "a sweep is already running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scanned":   result.Scanned,
		"renewed":   result.Renewed,
		"recreated": result.Recreated,
		"failed":    result.Failed,
	})
}
