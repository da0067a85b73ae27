//go:build unit

package booking_test

import (
	"testing"
	"time"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name    string
	mutate  func(*builder.BookingBuilder)
	errIs   error
	wantErr bool
}

func TestBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, booking.StatusPending, actual.Status())
		assert.Nil(t, actual.PaymentRef())
		// 60 min at 6000 cents/hour
		assert.Equal(t, int64(6000), actual.Price().Cents())
	})

	t.Run("price derivation", func(t *testing.T) {
		cases := []struct {
			name          string
			rateCents     int64
			minutes       int
			expectedCents int64
		}{
			{name: "half hour", rateCents: 6000, minutes: 30, expectedCents: 3000},
			{name: "ninety minutes", rateCents: 6000, minutes: 90, expectedCents: 9000},
			{name: "free service", rateCents: 0, minutes: 60, expectedCents: 0},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				actual, err := builder.NewBookingBuilder().
					With(func(b *builder.BookingBuilder) {
						b.HourlyRateCents = c.rateCents
						b.DurationMinutes = c.minutes
					}).BuildDomain()
				require.NoError(t, err)
				assert.Equal(t, c.expectedCents, actual.Price().Cents())
			})
		}
	})

	t.Run("input validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "invalid service type",
				mutate: func(b *builder.BookingBuilder) { b.WithServiceType("chemistry") },
				errIs:  booking.ErrInvalidServiceType,
			},
			{
				name:    "zero duration",
				mutate:  func(b *builder.BookingBuilder) { b.WithDuration(0) },
				wantErr: true,
			},
			{
				name:    "negative duration",
				mutate:  func(b *builder.BookingBuilder) { b.WithDuration(-30) },
				wantErr: true,
			},
			{
				name:   "minimum duration",
				mutate: func(b *builder.BookingBuilder) { b.WithDuration(30) },
			},
			{
				name:   "no notes",
				mutate: func(b *builder.BookingBuilder) { b.WithoutNotes() },
			},
		})
	})

	t.Run("schedule must be in the future", func(t *testing.T) {
		b := builder.NewBookingBuilder()
		schedule, err := booking.NewSchedule(b.ScheduledAt, b.DurationMinutes)
		require.NoError(t, err)

		// Clock pinned exactly at the start instant: not strictly future.
		assert.Error(t, schedule.ValidateFutureAt(b.ScheduledAt))
		assert.Error(t, schedule.ValidateFutureAt(b.ScheduledAt.Add(time.Minute)))
		assert.NoError(t, schedule.ValidateFutureAt(b.ScheduledAt.Add(-time.Minute)))
	})
}

func TestBookingConfirm(t *testing.T) {
	now := time.Now()

	t.Run("pending booking confirms and records the payment reference", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())

		require.NoError(t, b.Confirm("pi_123", now))

		assert.Equal(t, booking.StatusConfirmed, b.Status())
		require.NotNil(t, b.PaymentRef())
		assert.Equal(t, "pi_123", *b.PaymentRef())
	})

	t.Run("redelivered confirmation with the same reference is a no-op", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Confirm("pi_123", now))

		require.NoError(t, b.Confirm("pi_123", now.Add(time.Minute)))

		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, "pi_123", *b.PaymentRef())
	})

	t.Run("confirming with a different reference fails", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Confirm("pi_123", now))

		err := b.Confirm("pi_456", now)

		require.ErrorIs(t, err, booking.ErrNotPending)
		assert.Equal(t, "pi_123", *b.PaymentRef())
	})

	t.Run("empty payment reference is rejected", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.ErrorIs(t, b.Confirm("", now), booking.ErrEmptyPaymentRef)
		assert.Equal(t, booking.StatusPending, b.Status())
	})

	t.Run("cancelled booking cannot be confirmed", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Cancel(now))

		require.ErrorIs(t, b.Confirm("pi_123", now), booking.ErrNotPending)
		assert.Equal(t, booking.StatusCancelled, b.Status())
	})
}

func TestBookingCancel(t *testing.T) {
	now := time.Now()

	t.Run("pending booking cancels", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Cancel(now))
		assert.Equal(t, booking.StatusCancelled, b.Status())
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Cancel(now))
		require.NoError(t, b.Cancel(now.Add(time.Minute)))
		assert.Equal(t, booking.StatusCancelled, b.Status())
	})

	t.Run("confirmed booking cannot be cancelled by a payment failure", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Confirm("pi_123", now))

		require.ErrorIs(t, b.Cancel(now), booking.ErrNotPending)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})
}

func TestBookingComplete(t *testing.T) {
	now := time.Now()

	t.Run("confirmed booking completes", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Confirm("pi_123", now))

		require.NoError(t, b.Complete(now))
		assert.Equal(t, booking.StatusCompleted, b.Status())
	})

	t.Run("completing twice is a no-op", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Confirm("pi_123", now))
		require.NoError(t, b.Complete(now))

		require.NoError(t, b.Complete(now.Add(time.Minute)))
		assert.Equal(t, booking.StatusCompleted, b.Status())
	})

	t.Run("pending booking cannot be completed", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.ErrorIs(t, b.Complete(now), booking.ErrNotConfirmed)
	})

	t.Run("cancelled booking cannot be completed", func(t *testing.T) {
		b := mustBuild(t, builder.NewBookingBuilder())
		require.NoError(t, b.Cancel(now))
		require.ErrorIs(t, b.Complete(now), booking.ErrNotConfirmed)
	})
}

func TestStatus(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		for _, s := range []booking.Status{booking.StatusPending, booking.StatusConfirmed, booking.StatusCancelled, booking.StatusCompleted} {
			assert.True(t, s.IsValid(), s)
		}
		assert.False(t, booking.Status("refunded").IsValid())
		assert.False(t, booking.Status("").IsValid())
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.False(t, booking.StatusPending.IsTerminal())
		assert.False(t, booking.StatusConfirmed.IsTerminal())
		assert.True(t, booking.StatusCancelled.IsTerminal())
		assert.True(t, booking.StatusCompleted.IsTerminal())
	})
}

func mustBuild(t *testing.T, b *builder.BookingBuilder) *booking.Booking {
	t.Helper()
	actual, err := b.BuildDomain()
	require.NoError(t, err)
	require.NotNil(t, actual)
	return actual
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewBookingBuilder().With(c.mutate).BuildDomain()

			switch {
			case c.errIs != nil:
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			case c.wantErr:
				require.Nil(t, actual)
				require.Error(t, err)
			default:
				require.NotNil(t, actual)
				require.NoError(t, err)
			}
		})
	}
}
