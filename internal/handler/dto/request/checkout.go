package request

import (
	"mathsandmelody-api/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateCheckoutSessionRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Currency  string    `json:"currency,omitempty"`
}

func (r CreateCheckoutSessionRequest) ToParams() commands.CreateSessionParams {
	return commands.CreateSessionParams{
		BookingID: r.BookingID,
		Currency:  r.Currency,
	}
}
