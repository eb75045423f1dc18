package delivery

import (
	"errors"
	"net/http"

	authdelivery "docusense-backend/internal/auth/delivery"
	"docusense-backend/internal/search/usecase"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchUsecase usecase.SearchUsecase
}

func NewSearchHandler(searchUsecase usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{
		searchUsecase: searchUsecase,
	}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// Search answers a similarity query scoped to the caller's tenant. The
// tenant comes from the token, never the request body, so one tenant cannot
// query another's documents.
func (h *SearchHandler) Search(c *gin.Context) {
	claims := authdelivery.ClaimsFromContext(c)
	if claims == nil || claims.TenantID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "token has no tenant"})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	matches, err := h.searchUsecase.Search(c.Request.Context(), claims.TenantID, req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}
