package bootstrap

import (
	"mathsandmelody-api/internal/infra/payment"
	"mathsandmelody-api/internal/pkg/config"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			NewPaymentProvider,
			fx.As(new(payment.Provider)),
		),
	),
)

func NewPaymentProvider(cfg config.Config) *payment.Client {
	return payment.NewClient(cfg.Payment)
}
