package api

import (
	"errors"
	"net/http"

	reqdto "mathsandmelody-api/internal/handler/dto/request"
	resdto "mathsandmelody-api/internal/handler/dto/response"
	"mathsandmelody-api/internal/handler/middleware"
	"mathsandmelody-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{checkoutCommands: checkoutCommands}
}

// @Summary Create checkout session
// @Description Start a hosted payment session for a pending booking
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateCheckoutSessionRequest true "Checkout request"
// @Success 201 {object} resdto.CheckoutSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /checkout/sessions [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	session, err := h.checkoutCommands.CreateSession(c.Request.Context(), actor, req.ToParams())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
		case errors.Is(err, commands.ErrCheckoutForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Checkout is not allowed for this booking",
			})
		case errors.Is(err, commands.ErrBookingNotPayable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Booking is not payable",
			})
		case errors.Is(err, commands.ErrCurrencyUnsupported):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unsupported currency",
			})
		case errors.Is(err, commands.ErrPaymentProvider):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment provider is unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.CheckoutSessionResponse{
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
	})
}
