package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mathsandmelody-api/internal/handler/httperr"
	"mathsandmelody-api/internal/infra/payment"
	"mathsandmelody-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// webhookBodyLimit bounds raw payload reads; provider events are small.
const webhookBodyLimit = 1 << 20

type WebhookHandler struct {
	provider        payment.Provider
	webhookCommands commands.WebhookCommands
}

func NewWebhookHandler(provider payment.Provider, webhookCommands commands.WebhookCommands) *WebhookHandler {
	return &WebhookHandler{
		provider:        provider,
		webhookCommands: webhookCommands,
	}
}

// @Summary Payment webhook
// @Description Receive signed payment events from the hosted checkout provider
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /webhooks/payment [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	// Signature verification needs the exact bytes on the wire, so the body
	// is consumed before any JSON binding.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	event, err := h.provider.VerifyAndParseWebhook(c.Request.Header, body)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrSignatureInvalid):
			slog.Warn("webhook signature verification failed", "error", err.Error())
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid webhook signature",
			})
		case errors.Is(err, payment.ErrMalformedEvent):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Malformed webhook event",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	outcome, err := h.webhookCommands.ProcessEvent(c.Request.Context(), event)
	if err != nil {
		switch {
		// Permanent failures get a 4xx so the provider stops redelivering
		// an event that can never be applied.
		case errors.Is(err, commands.ErrMissingCorrelation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Event has no booking correlation",
			})
		case errors.Is(err, commands.ErrUnknownBooking):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Event references an unknown booking",
			})
		default:
			// Transient store failure: a non-2xx here makes the provider
			// retry, and the guarded transition keeps the retry safe.
			slog.Error("webhook processing failed", "event_id", event.ID, "error", err.Error())
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to process event")
		}
		return
	}

	slog.Info("webhook processed",
		"event_id", outcome.EventID,
		"kind", string(outcome.Kind),
		"booking_id", outcome.BookingID,
		"applied", outcome.Applied,
	)
	c.JSON(http.StatusOK, gin.H{"received": true})
}
