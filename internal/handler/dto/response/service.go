package response

import (
	"time"

	"mathsandmelody-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	HourlyRateCents int64     `json:"hourlyRateCents"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func FromServiceView(view *queries.ServiceView) *ServiceResponse {
	var resp ServiceResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromServiceViews(views []*queries.ServiceView) []*ServiceResponse {
	resps := make([]*ServiceResponse, 0, len(views))
	for _, view := range views {
		resps = append(resps, FromServiceView(view))
	}
	return resps
}
