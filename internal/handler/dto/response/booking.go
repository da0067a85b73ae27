package response

import (
	"time"

	"mathsandmelody-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	UserEmail        string    `json:"userEmail"`
	ServiceID        uuid.UUID `json:"serviceId"`
	ServiceType      string    `json:"serviceType"`
	ServiceTitle     string    `json:"serviceTitle"`
	ScheduledAt      time.Time `json:"scheduledAt"`
	DurationMinutes  int32     `json:"durationMinutes"`
	PriceCents       int64     `json:"priceCents"`
	Status           string    `json:"status"`
	PaymentReference *string   `json:"paymentReference,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type BookingListResponse struct {
	ID              uuid.UUID `json:"id"`
	ServiceID       uuid.UUID `json:"serviceId"`
	ServiceType     string    `json:"serviceType"`
	ServiceTitle    string    `json:"serviceTitle"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int32     `json:"durationMinutes"`
	PriceCents      int64     `json:"priceCents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func FromBookingView(view *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromBookingListItems(items []*queries.BookingListItem) []*BookingListResponse {
	resps := make([]*BookingListResponse, 0, len(items))
	for _, item := range items {
		var resp BookingListResponse
		_ = copier.Copy(&resp, item)
		resps = append(resps, &resp)
	}
	return resps
}
