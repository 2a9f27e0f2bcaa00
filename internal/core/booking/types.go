package booking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rentops-lab/rentops/internal/core/calendar"
)

// Kind distinguishes guest stays from cleaning/maintenance blocks.
type Kind string

const (
	KindStay          Kind = "stay"
	KindCleaningBlock Kind = "cleaning_block"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStay, KindCleaningBlock:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q (expected stay or cleaning_block)", ErrInvalidArgument, s)
	}
}

// Status is the lifecycle state of a commitment or reservation.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// InactiveStatuses never block a calendar and never earn revenue.
var InactiveStatuses = []Status{StatusCancelled, StatusDraft}

// Active reports whether s participates in availability and revenue.
func (s Status) Active() bool {
	for _, inactive := range InactiveStatuses {
		if s == inactive {
			return false
		}
	}
	return true
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
	}
}

// Commitment is anything occupying a unit's calendar: a stay or a cleaning block.
type Commitment struct {
	ID       string
	UnitID   string
	Interval calendar.Interval
	Kind     Kind
	Status   Status
	// Label is the human-facing reference (guest name, booking code) shown in conflicts.
	Label string
}

// FeeComponent is a named charge carried on a reservation (cleaning fee, service fee, ...).
type FeeComponent struct {
	Name   string
	Amount decimal.Decimal
}

// MonetaryReservation is a stay that carries value to be attributed across reporting periods.
// Interval is [check-in, check-out).
type MonetaryReservation struct {
	ID         string
	UnitID     string
	Interval   calendar.Interval
	TotalValue decimal.Decimal
	Fees       []FeeComponent
	Platform   string
	Status     Status
	Guests     int
}

// Unit is a rentable property. Only used for existence, ownership and unit counts.
type Unit struct {
	ID      string
	OwnerID string
	Name    string
	Active  bool
}

// OwnedBy reports whether the unit is visible to the given owner scope.
// An empty scope sees every unit.
func (u Unit) OwnedBy(ownerID string) bool {
	return ownerID == "" || u.OwnerID == ownerID
}
