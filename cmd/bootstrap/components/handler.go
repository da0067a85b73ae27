package components

import (
	"mathsandmelody-api/internal/handler"
	"mathsandmelody-api/internal/handler/api"
	"mathsandmelody-api/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewBookingHandler,
		api.NewCheckoutHandler,
		api.NewServiceHandler,
		api.NewWebhookHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	booking *api.BookingHandler,
	checkout *api.CheckoutHandler,
	service *api.ServiceHandler,
	webhook *api.WebhookHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:     auth,
		Booking:  booking,
		Checkout: checkout,
		Service:  service,
		Webhook:  webhook,
	}
}
