package booking

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no payment-driven transition may leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type ServiceType string

const (
	ServiceMath   ServiceType = "math"
	ServiceMusic  ServiceType = "music"
	ServiceSports ServiceType = "sports"
)

func (t ServiceType) String() string {
	return string(t)
}

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceMath, ServiceMusic, ServiceSports:
		return true
	default:
		return false
	}
}

func NewServiceType(s string) (ServiceType, error) {
	t := ServiceType(s)
	if !t.IsValid() {
		return "", ErrInvalidServiceType
	}
	return t, nil
}
