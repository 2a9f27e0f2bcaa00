package storage

import (
	"context"
	"errors"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

// ErrOverlap is returned by SaveCommitment when the authoritative write-time check finds an
// active commitment on the same unit overlapping the new one.
var ErrOverlap = errors.New("commitment overlaps an existing active commitment")

// ErrDuplicate is returned when a commitment with the same id already exists.
var ErrDuplicate = errors.New("commitment already exists")

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// CommitmentQuery selects commitments of one unit overlapping an interval.
type CommitmentQuery struct {
	UnitID   string
	Interval calendar.Interval
	// Kinds restricts the result; empty means every kind.
	Kinds []booking.Kind
	// ExcludeID drops one commitment, used when editing an existing booking's dates.
	ExcludeID string
	// ExcludeStatuses drops commitments in these states (normally booking.InactiveStatuses).
	ExcludeStatuses []booking.Status
}

// CommitmentStore reads and writes calendar commitments.
type CommitmentStore interface {
	// FetchCommitments returns matching commitments ordered by start date.
	FetchCommitments(ctx context.Context, q CommitmentQuery) ([]booking.Commitment, error)

	// SaveCommitment persists c. Implementations must re-check overlap against active
	// commitments atomically with the insert and return ErrOverlap when it fails.
	SaveCommitment(ctx context.Context, c *booking.Commitment) error
}

// ReservationStore reads monetary reservations for revenue attribution.
type ReservationStore interface {
	// FetchReservationsOverlapping returns active reservations whose billable span
	// [check-in, check-out] overlaps period, optionally restricted to one unit.
	FetchReservationsOverlapping(ctx context.Context, period calendar.Interval, unitID string) ([]booking.MonetaryReservation, error)
}

// UnitStore answers unit existence, ownership and count questions.
type UnitStore interface {
	// FetchUnit returns ErrNotFound when the unit does not exist.
	FetchUnit(ctx context.Context, id string) (booking.Unit, error)
	// FetchUnitCount counts units visible to ownerScope (empty = all owners).
	FetchUnitCount(ctx context.Context, ownerScope string, activeOnly bool) (int, error)
}

// Store bundles the three data-access contracts.
type Store interface {
	CommitmentStore
	ReservationStore
	UnitStore
	Close() error
}
