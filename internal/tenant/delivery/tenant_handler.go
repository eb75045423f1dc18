package delivery

import (
	"net/http"

	"docusense-backend/internal/tenant/usecase"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantUsecase usecase.TenantUsecase
}

func NewTenantHandler(tenantUsecase usecase.TenantUsecase) *TenantHandler {
	return &TenantHandler{
		tenantUsecase: tenantUsecase,
	}
}

type registerRequest struct {
	TenantID    string `json:"tenant_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

func (h *TenantHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	tenant, err := h.tenantUsecase.Register(c.Request.Context(), req.TenantID, req.DisplayName)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenantUsecase.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.tenantUsecase.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tenant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}

	c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	var settings usecase.TenantSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	tenant, err := h.tenantUsecase.UpdateSettings(c.Param("id"), &settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) RotateClientState(c *gin.Context) {
	tenant, err := h.tenantUsecase.RotateClientState(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "client state rotated", "tenant": tenant})
}

func (h *TenantHandler) Cleanup(c *gin.Context) {
	if err := h.tenantUsecase.Cleanup(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tenant cleaned up"})
}
