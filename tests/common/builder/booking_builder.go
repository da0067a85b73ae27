//go:build unit || e2e

package builder

import (
	"time"

	dombooking "mathsandmelody-api/internal/domain/booking"
	reqdto "mathsandmelody-api/internal/handler/dto/request"
	"mathsandmelody-api/internal/pkg/clock"
	"mathsandmelody-api/internal/usecase/commands"
	"mathsandmelody-api/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	UserEmail       string
	ServiceID       uuid.UUID
	ServiceType     string
	ServiceTitle    string
	HourlyRateCents int64
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
	PriceCents      int64
	PaymentRef      *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Now().UTC().Truncate(time.Second)
	notes := "Please focus on calculus"
	return &BookingBuilder{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		UserEmail:       "student@example.com",
		ServiceID:       uuid.New(),
		ServiceType:     "math",
		ServiceTitle:    "Math Tutoring",
		HourlyRateCents: 6000,
		ScheduledAt:     now.Add(48 * time.Hour),
		DurationMinutes: 60,
		Status:          "pending",
		PriceCents:      6000,
		Notes:           &notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Build methods

// BuildDomain constructs the entity through the factory, with the clock
// pinned one hour before ScheduledAt so the future-schedule check passes.
func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	serviceType, err := dombooking.NewServiceType(b.ServiceType)
	if err != nil {
		return nil, err
	}
	schedule, err := dombooking.NewSchedule(b.ScheduledAt, b.DurationMinutes)
	if err != nil {
		return nil, err
	}
	services := &dombooking.Services{Clock: clock.NewMockClock(b.ScheduledAt.Add(-time.Hour))}
	spec := dombooking.ServiceSpec{
		ID:              b.ServiceID,
		Type:            serviceType,
		HourlyRateCents: b.HourlyRateCents,
	}
	return dombooking.NewBooking(services, spec, b.UserID, schedule, dombooking.NewNotes(b.GetNotesValue()))
}

func (b *BookingBuilder) BuildViewQuery() *queries.BookingView {
	return &queries.BookingView{
		ID:               b.ID,
		UserID:           b.UserID,
		UserEmail:        b.UserEmail,
		ServiceID:        b.ServiceID,
		ServiceType:      b.ServiceType,
		ServiceTitle:     b.ServiceTitle,
		ScheduledAt:      b.ScheduledAt,
		DurationMinutes:  int32(b.DurationMinutes),
		PriceCents:       b.PriceCents,
		Status:           b.Status,
		PaymentReference: b.PaymentRef,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildListItem() *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		ServiceType:     b.ServiceType,
		ServiceTitle:    b.ServiceTitle,
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: int32(b.DurationMinutes),
		PriceCents:      b.PriceCents,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
	}
}

func (b *BookingBuilder) BuildSnapshot() *commands.BookingSnapshot {
	return &commands.BookingSnapshot{
		ID:          b.ID,
		UserID:      b.UserID,
		Status:      b.Status,
		PriceCents:  b.PriceCents,
		PaymentRef:  b.PaymentRef,
		ScheduledAt: b.ScheduledAt,
	}
}

func (b *BookingBuilder) BuildServiceSnapshot() *commands.ServiceSnapshot {
	return &commands.ServiceSnapshot{
		ID:              b.ServiceID,
		Type:            b.ServiceType,
		Title:           b.ServiceTitle,
		HourlyRateCents: b.HourlyRateCents,
		IsActive:        true,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		ServiceID:       b.ServiceID,
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: b.DurationMinutes,
		Notes:           b.Notes,
	}
}

func (b *BookingBuilder) BuildCreateParams() commands.CreateBookingParams {
	return commands.CreateBookingParams{
		ServiceID:       b.ServiceID,
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: b.DurationMinutes,
		Notes:           b.Notes,
	}
}

func (b *BookingBuilder) GetNotesValue() string {
	if b.Notes == nil {
		return ""
	}
	return *b.Notes
}

// Fluent builder methods
func (b *BookingBuilder) WithID(id uuid.UUID) *BookingBuilder {
	b.ID = id
	return b
}

func (b *BookingBuilder) WithUserID(userID uuid.UUID) *BookingBuilder {
	b.UserID = userID
	return b
}

func (b *BookingBuilder) WithServiceID(serviceID uuid.UUID) *BookingBuilder {
	b.ServiceID = serviceID
	return b
}

func (b *BookingBuilder) WithServiceType(serviceType string) *BookingBuilder {
	b.ServiceType = serviceType
	return b
}

func (b *BookingBuilder) WithScheduledAt(t time.Time) *BookingBuilder {
	b.ScheduledAt = t
	return b
}

func (b *BookingBuilder) WithDuration(minutes int) *BookingBuilder {
	b.DurationMinutes = minutes
	return b
}

func (b *BookingBuilder) WithStatus(status string) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) WithPriceCents(cents int64) *BookingBuilder {
	b.PriceCents = cents
	return b
}

func (b *BookingBuilder) WithNotes(notes string) *BookingBuilder {
	b.Notes = &notes
	return b
}

func (b *BookingBuilder) WithoutNotes() *BookingBuilder {
	b.Notes = nil
	return b
}

func (b *BookingBuilder) AsConfirmed(paymentRef string) *BookingBuilder {
	b.Status = "confirmed"
	b.PaymentRef = &paymentRef
	return b
}

func (b *BookingBuilder) AsCancelled() *BookingBuilder {
	b.Status = "cancelled"
	return b
}

func (b *BookingBuilder) AsCompleted(paymentRef string) *BookingBuilder {
	b.Status = "completed"
	b.PaymentRef = &paymentRef
	return b
}
