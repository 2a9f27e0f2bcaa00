package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
	"github.com/rentops-lab/rentops/internal/core/storage"
)

// Store is an in-process implementation of storage.Store, used for local runs and tests.
// SaveCommitment performs the overlap re-check and the insert under one lock.
type Store struct {
	mu           sync.RWMutex
	units        map[string]booking.Unit
	commitments  map[string]booking.Commitment
	reservations map[string]booking.MonetaryReservation
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		units:        make(map[string]booking.Unit),
		commitments:  make(map[string]booking.Commitment),
		reservations: make(map[string]booking.MonetaryReservation),
	}
}

// PutUnit inserts or replaces a unit.
func (s *Store) PutUnit(u booking.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID] = u
}

// PutReservation inserts or replaces a reservation.
func (s *Store) PutReservation(r booking.MonetaryReservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = r
}

// FetchCommitments returns matching commitments ordered by start date, then id.
func (s *Store) FetchCommitments(ctx context.Context, q storage.CommitmentQuery) ([]booking.Commitment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []booking.Commitment
	for _, c := range s.commitments {
		if c.UnitID != q.UnitID || (q.ExcludeID != "" && c.ID == q.ExcludeID) {
			continue
		}
		if containsStatus(q.ExcludeStatuses, c.Status) || !matchesKind(q.Kinds, c.Kind) {
			continue
		}
		if !calendar.Overlaps(c.Interval, q.Interval) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interval.Start == out[j].Interval.Start {
			return out[i].ID < out[j].ID
		}
		return out[i].Interval.Start.Before(out[j].Interval.Start)
	})
	return out, nil
}

// SaveCommitment stores c if no active commitment of the same unit overlaps it.
func (s *Store) SaveCommitment(ctx context.Context, c *booking.Commitment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.commitments[c.ID]; exists {
		return storage.ErrDuplicate
	}
	if _, ok := s.units[c.UnitID]; !ok {
		return fmt.Errorf("unit %s: %w", c.UnitID, storage.ErrNotFound)
	}

	if c.Status.Active() {
		for _, existing := range s.commitments {
			if existing.UnitID != c.UnitID || !existing.Status.Active() {
				continue
			}
			if calendar.Overlaps(existing.Interval, c.Interval) {
				return fmt.Errorf("%w: conflicts with %s", storage.ErrOverlap, existing.ID)
			}
		}
	}

	s.commitments[c.ID] = *c
	slog.Debug("[Memory] Saved commitment", "commitment_id", c.ID, "unit_id", c.UnitID)
	return nil
}

// FetchReservationsOverlapping returns active reservations whose billable span overlaps period.
func (s *Store) FetchReservationsOverlapping(ctx context.Context, period calendar.Interval, unitID string) ([]booking.MonetaryReservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []booking.MonetaryReservation
	for _, r := range s.reservations {
		if unitID != "" && r.UnitID != unitID {
			continue
		}
		if !r.Status.Active() || !r.Interval.Valid() {
			continue
		}
		if !calendar.Overlaps(calendar.BillableInterval(r.Interval), period) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interval.Start == out[j].Interval.Start {
			return out[i].ID < out[j].ID
		}
		return out[i].Interval.Start.Before(out[j].Interval.Start)
	})
	return out, nil
}

func (s *Store) FetchUnit(ctx context.Context, id string) (booking.Unit, error) {
	if err := ctx.Err(); err != nil {
		return booking.Unit{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[id]
	if !ok {
		return booking.Unit{}, fmt.Errorf("unit %s: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) FetchUnitCount(ctx context.Context, ownerScope string, activeOnly bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, u := range s.units {
		if !u.OwnedBy(ownerScope) || (activeOnly && !u.Active) {
			continue
		}
		count++
	}
	return count, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func containsStatus(statuses []booking.Status, s booking.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func matchesKind(kinds []booking.Kind, k booking.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}
