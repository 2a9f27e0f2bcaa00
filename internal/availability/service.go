package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
	"github.com/rentops-lab/rentops/internal/core/storage"
	"github.com/rentops-lab/rentops/internal/events"
	"github.com/rentops-lab/rentops/internal/metrics"
)

const defaultMaxSuggestions = 5

// CheckResult is the outcome of an availability check.
type CheckResult struct {
	Available bool
	// Conflicts are the overlapping commitments ordered by start.
	Conflicts []booking.Commitment
}

// UnavailableError is returned by Reserve when the advisory check finds conflicts.
type UnavailableError struct {
	Conflicts []booking.Commitment
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %d conflicting commitment(s)", booking.ErrUnavailable, len(e.Conflicts))
}

func (e *UnavailableError) Unwrap() error {
	return booking.ErrUnavailable
}

// Options configures a Service. Zero values are valid.
type Options struct {
	// MaxSuggestions caps the gaps returned over HTTP. The finder itself is uncapped.
	MaxSuggestions int
	Publisher      events.Publisher
	Metrics        *metrics.Metrics
}

// Service answers availability and gap questions and creates commitments.
// It holds no locks: the store's write-time re-check is authoritative.
type Service struct {
	commitments    storage.CommitmentStore
	units          storage.UnitStore
	publisher      events.Publisher
	metrics        *metrics.Metrics
	maxSuggestions int
	newID          func() string
	nowFn          func() time.Time
}

func NewService(commitments storage.CommitmentStore, units storage.UnitStore, opts Options) *Service {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = defaultMaxSuggestions
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	return &Service{
		commitments:    commitments,
		units:          units,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		maxSuggestions: opts.MaxSuggestions,
		newID:          uuid.NewString,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// CheckAvailability reports whether iv is free on the unit. Active commitments of every
// kind count; excludeID ignores one commitment. Touching intervals do not conflict.
func (s *Service) CheckAvailability(ctx context.Context, ownerID, unitID string, iv calendar.Interval, excludeID string) (CheckResult, error) {
	if !iv.Start.Before(iv.End) {
		s.metrics.IncAvailabilityCheck("error")
		return CheckResult{}, fmt.Errorf("%w: check-in %s must be before check-out %s", booking.ErrInvalidInterval, iv.Start, iv.End)
	}
	if err := s.authorizeUnit(ctx, ownerID, unitID); err != nil {
		s.metrics.IncAvailabilityCheck("error")
		return CheckResult{}, err
	}

	conflicts, err := s.activeCommitments(ctx, unitID, iv, excludeID)
	if err != nil {
		s.metrics.IncAvailabilityCheck("error")
		return CheckResult{}, err
	}

	result := CheckResult{Available: len(conflicts) == 0, Conflicts: conflicts}
	if result.Available {
		s.metrics.IncAvailabilityCheck("available")
	} else {
		s.metrics.IncAvailabilityCheck("unavailable")
	}
	return result, nil
}

// FindGaps returns the free stretches of window at least minGapDays long, ordered by start.
func (s *Service) FindGaps(ctx context.Context, ownerID, unitID string, window calendar.Interval, minGapDays int) ([]calendar.Interval, error) {
	if minGapDays < 0 {
		return nil, fmt.Errorf("%w: min gap days %d is negative", booking.ErrInvalidArgument, minGapDays)
	}
	if !window.Start.Before(window.End) {
		return nil, fmt.Errorf("%w: window start %s must be before end %s", booking.ErrInvalidInterval, window.Start, window.End)
	}
	if err := s.authorizeUnit(ctx, ownerID, unitID); err != nil {
		return nil, err
	}

	commitments, err := s.activeCommitments(ctx, unitID, window, "")
	if err != nil {
		return nil, err
	}

	busy := make([]calendar.Interval, 0, len(commitments))
	for _, c := range commitments {
		busy = append(busy, c.Interval)
	}

	var gaps []calendar.Interval
	for _, gap := range calendar.Complement(window, calendar.Merge(busy)) {
		if days := gap.Days(); days > 0 && days >= minGapDays {
			gaps = append(gaps, gap)
		}
	}
	return gaps, nil
}

// Suggest is FindGaps capped at the configured number of suggestions.
func (s *Service) Suggest(ctx context.Context, ownerID, unitID string, window calendar.Interval, minGapDays int) ([]calendar.Interval, error) {
	gaps, err := s.FindGaps(ctx, ownerID, unitID, window, minGapDays)
	if err != nil {
		return nil, err
	}
	if len(gaps) > s.maxSuggestions {
		gaps = gaps[:s.maxSuggestions]
	}
	return gaps, nil
}

// Reserve creates a commitment in two phases: an advisory availability check, then an
// insert whose store-side re-check decides races. Losing a race yields ErrConcurrentConflict.
func (s *Service) Reserve(ctx context.Context, ownerID string, c booking.Commitment) (booking.Commitment, error) {
	if !c.Interval.Start.Before(c.Interval.End) {
		s.metrics.IncCommitment("error")
		return booking.Commitment{}, fmt.Errorf("%w: start %s must be before end %s", booking.ErrInvalidInterval, c.Interval.Start, c.Interval.End)
	}
	if c.Status == "" {
		c.Status = booking.StatusConfirmed
	}

	if c.Status.Active() {
		check, err := s.CheckAvailability(ctx, ownerID, c.UnitID, c.Interval, "")
		if err != nil {
			s.metrics.IncCommitment("error")
			return booking.Commitment{}, err
		}
		if !check.Available {
			s.metrics.IncConflict("advisory")
			s.metrics.IncCommitment("unavailable")
			return booking.Commitment{}, &UnavailableError{Conflicts: check.Conflicts}
		}
	} else if err := s.authorizeUnit(ctx, ownerID, c.UnitID); err != nil {
		s.metrics.IncCommitment("error")
		return booking.Commitment{}, err
	}

	c.ID = s.newID()
	if err := s.commitments.SaveCommitment(ctx, &c); err != nil {
		switch {
		case errors.Is(err, storage.ErrOverlap):
			s.metrics.IncConflict("write")
			s.metrics.IncCommitment("conflict")
			slog.Warn("[Availability] Write-time overlap, commitment rejected",
				"unit_id", c.UnitID,
				"start", c.Interval.Start.String(),
				"end", c.Interval.End.String(),
			)
			return booking.Commitment{}, fmt.Errorf("%w: %v", booking.ErrConcurrentConflict, err)
		case errors.Is(err, storage.ErrDuplicate):
			s.metrics.IncCommitment("conflict")
			return booking.Commitment{}, fmt.Errorf("%w: commitment id %s already taken: %v", booking.ErrConcurrentConflict, c.ID, err)
		case errors.Is(err, storage.ErrNotFound):
			s.metrics.IncCommitment("error")
			return booking.Commitment{}, fmt.Errorf("%w: %s", booking.ErrUnitNotFound, c.UnitID)
		default:
			s.metrics.IncCommitment("error")
			return booking.Commitment{}, fmt.Errorf("%w: save commitment: %v", booking.ErrDataFetchFailed, err)
		}
	}
	s.metrics.IncCommitment("created")

	if err := s.publisher.Publish(ctx, events.CommitmentCreated(c, s.nowFn())); err != nil {
		slog.Error("[Availability] Failed to publish commitment event",
			"commitment_id", c.ID,
			"error", err,
		)
	}

	slog.Info("[Availability] Commitment created",
		"commitment_id", c.ID,
		"unit_id", c.UnitID,
		"kind", c.Kind,
		"start", c.Interval.Start.String(),
		"end", c.Interval.End.String(),
	)
	return c, nil
}

func (s *Service) authorizeUnit(ctx context.Context, ownerID, unitID string) error {
	if strings.TrimSpace(unitID) == "" {
		return fmt.Errorf("%w: unit id is required", booking.ErrInvalidArgument)
	}
	unit, err := s.units.FetchUnit(ctx, unitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", booking.ErrUnitNotFound, unitID)
		}
		return fmt.Errorf("%w: fetch unit %s: %v", booking.ErrDataFetchFailed, unitID, err)
	}
	if !unit.OwnedBy(ownerID) {
		return fmt.Errorf("%w: %s", booking.ErrNotOwned, unitID)
	}
	return nil
}

// activeCommitments fetches the unit's active commitments overlapping iv, re-applying the
// store's filters on the result.
func (s *Service) activeCommitments(ctx context.Context, unitID string, iv calendar.Interval, excludeID string) ([]booking.Commitment, error) {
	fetched, err := s.commitments.FetchCommitments(ctx, storage.CommitmentQuery{
		UnitID:          unitID,
		Interval:        iv,
		ExcludeID:       excludeID,
		ExcludeStatuses: booking.InactiveStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch commitments for %s: %v", booking.ErrDataFetchFailed, unitID, err)
	}

	active := make([]booking.Commitment, 0, len(fetched))
	for _, c := range fetched {
		if c.UnitID != unitID || !c.Status.Active() {
			continue
		}
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if calendar.Overlaps(c.Interval, iv) {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Interval.Start != active[j].Interval.Start {
			return active[i].Interval.Start.Before(active[j].Interval.Start)
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}
