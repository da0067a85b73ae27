package booking

import (
	"errors"
	"time"
)

// Schedule is the planned session time: a start instant plus a duration in
// whole minutes.
type Schedule struct {
	startAt         time.Time
	durationMinutes int
}

func NewSchedule(startAt time.Time, durationMinutes int) (Schedule, error) {
	if startAt.IsZero() {
		return Schedule{}, errors.New("start time is required")
	}
	if durationMinutes <= 0 {
		return Schedule{}, errors.New("duration must be positive")
	}
	return Schedule{
		startAt:         startAt,
		durationMinutes: durationMinutes,
	}, nil
}

func (s Schedule) StartAt() time.Time {
	return s.startAt
}

func (s Schedule) DurationMinutes() int {
	return s.durationMinutes
}

func (s Schedule) ValidateFutureAt(now time.Time) error {
	if !s.startAt.After(now) {
		return errors.New("start time must be in the future")
	}
	return nil
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

type Notes struct {
	value string
}

func NewNotes(value string) Notes {
	return Notes{value: value}
}

func (n Notes) String() string {
	return n.value
}

func (n Notes) IsEmpty() bool {
	return n.value == ""
}
