package delivery

import (
	"context"
	"log"
	"net/http"

	ingestdomain "docusense-backend/internal/ingestion/domain"
	"docusense-backend/internal/ingestion/usecase"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Microsoft Graph change notifications.
type WebhookHandler struct {
	ingestionUsecase usecase.IngestionUsecase
}

func NewWebhookHandler(ingestionUsecase usecase.IngestionUsecase) *WebhookHandler {
	return &WebhookHandler{
		ingestionUsecase: ingestionUsecase,
	}
}

// HandleNotification answers both halves of the Graph webhook contract.
// A request carrying validationToken is the subscription handshake: the token
// must be echoed back verbatim as text/plain with 200, nothing else, or
// Graph refuses to create the subscription. Everything else is a change
// notification batch, acknowledged with 202 before processing so Graph does
// not retry while we ingest.
func (h *WebhookHandler) HandleNotification(c *gin.Context) {
	if token := c.Query("validationToken"); token != "" {
		c.String(http.StatusOK, token)
		return
	}

	var batch ingestdomain.NotificationBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		log.Printf("[Webhook] Malformed notification payload: %v", err)
		c.Status(http.StatusAccepted)
		return
	}

	c.Status(http.StatusAccepted)

	go func() {
		result, err := h.ingestionUsecase.HandleNotificationBatch(context.Background(), &batch)
		if err != nil {
			log.Printf("[Webhook] Error handling notification batch: %v", err)
			return
		}
		if result.Rejected > 0 {
			log.Printf("[Webhook] Batch handled: accepted=%d rejected=%d", result.Accepted, result.Rejected)
		}
	}()
}
