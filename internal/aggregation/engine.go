package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rentops-lab/rentops/internal/core/aggregation"
	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
	"github.com/rentops-lab/rentops/internal/core/proration"
	"github.com/rentops-lab/rentops/internal/core/storage"
	"github.com/rentops-lab/rentops/internal/metrics"
)

const (
	defaultDailyMaxDays = 31
	defaultWorkerCount  = 8
)

// Granularity is the size of one reporting period.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

// Options controls period selection and fan-out.
type Options struct {
	// DailyMaxDays is the longest window still reported day by day.
	DailyMaxDays int
	// WorkerCount bounds the number of periods fetched concurrently.
	WorkerCount int
	Metrics     *metrics.Metrics
}

func (o Options) normalized() Options {
	n := o
	if n.DailyMaxDays <= 0 {
		n.DailyMaxDays = defaultDailyMaxDays
	}
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	return n
}

// Query is a reporting request. Start and End are both inclusive calendar dates.
type Query struct {
	Start   calendar.Date
	End     calendar.Date
	UnitID  string
	OwnerID string
}

// Period is one reporting bucket. Interval is half-open.
type Period struct {
	Label    string
	Interval calendar.Interval
	Revenue  decimal.Decimal
}

// Result is the attributed revenue and occupancy of one window. Amounts are unrounded.
type Result struct {
	// Window is the reporting window as a half-open interval [Start, End+1).
	Window      calendar.Interval
	Granularity Granularity
	Periods     []Period
	// PerUnit holds one series per unit, aligned with Periods.
	PerUnit     map[string][]decimal.Decimal
	PerPlatform map[string]decimal.Decimal
	// PerFee is the prorated part of each named fee. Fees are reported alongside
	// revenue, not added to it.
	PerFee map[string]decimal.Decimal
	// PeakPeriodRevenue is each unit's best single period.
	PeakPeriodRevenue map[string]decimal.Decimal
	TotalRevenue      decimal.Decimal

	OccupiedNights    int
	PossibleNights    int
	OccupancyRate     int64
	TotalReservations int
	TotalGuests       int
}

// Engine attributes reservation value to the periods of a reporting window.
type Engine struct {
	reservations storage.ReservationStore
	units        storage.UnitStore
	proration    *proration.Engine
	opts         Options
}

func NewEngine(reservations storage.ReservationStore, units storage.UnitStore, prorater *proration.Engine, opts Options) *Engine {
	return &Engine{
		reservations: reservations,
		units:        units,
		proration:    prorater,
		opts:         opts.normalized(),
	}
}

// GranularityFor reports how a window of windowDays days is bucketed.
func (e *Engine) GranularityFor(windowDays int) Granularity {
	if windowDays <= e.opts.DailyMaxDays {
		return GranularityDaily
	}
	return GranularityMonthly
}

// Periods tiles window with contiguous daily or monthly periods, clipping the first and
// last month to the window.
func Periods(window calendar.Interval, g Granularity) []Period {
	var periods []Period
	switch g {
	case GranularityDaily:
		for d := window.Start; d.Before(window.End); d = d.AddDays(1) {
			periods = append(periods, Period{Label: d.String(), Interval: calendar.Day(d), Revenue: decimal.Zero})
		}
	default:
		for _, part := range calendar.SplitByMonth(window) {
			periods = append(periods, Period{
				Label:    fmt.Sprintf("%04d-%02d", part.Start.Year, int(part.Start.Month)),
				Interval: part,
				Revenue:  decimal.Zero,
			})
		}
	}
	return periods
}

// Aggregate computes the report for q. Periods are fetched and prorated concurrently,
// each into its own accumulator; the accumulators are merged once every period is done.
// Any fetch failure fails the whole call with booking.ErrDataFetchFailed.
func (e *Engine) Aggregate(ctx context.Context, q Query) (*Result, error) {
	if q.End.Before(q.Start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", booking.ErrInvalidInterval, q.End, q.Start)
	}

	started := time.Now()
	window := calendar.NewInterval(q.Start, q.End.AddDays(1))
	windowDays := calendar.InclusiveDaySpan(calendar.NewInterval(q.Start, q.End))
	granularity := e.GranularityFor(windowDays)

	result, err := e.aggregate(ctx, q, window, windowDays, granularity)
	e.opts.Metrics.ObserveAggregation(string(granularity), time.Since(started), err)
	if err != nil {
		slog.Warn("[Aggregation] Aggregation failed",
			"start", q.Start.String(),
			"end", q.End.String(),
			"unit_id", q.UnitID,
			"error", err,
		)
		return nil, err
	}

	slog.Debug("[Aggregation] Aggregation complete",
		"start", q.Start.String(),
		"end", q.End.String(),
		"granularity", granularity,
		"periods", len(result.Periods),
		"reservations", result.TotalReservations,
		"elapsed", time.Since(started),
	)
	return result, nil
}

func (e *Engine) aggregate(ctx context.Context, q Query, window calendar.Interval, windowDays int, granularity Granularity) (*Result, error) {
	scope, err := e.resolveScope(ctx, q)
	if err != nil {
		return nil, err
	}

	periods := Periods(window, granularity)
	partials := make([]*accumulator, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.WorkerCount)
	for i := range periods {
		i := i
		g.Go(func() error {
			acc, err := e.aggregatePeriod(gctx, scope, i, periods[i])
			if err != nil {
				return err
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newAccumulator()
	for _, acc := range partials {
		merged.merge(acc)
	}

	return e.buildResult(window, windowDays, granularity, periods, scope, merged), nil
}

func (e *Engine) aggregatePeriod(ctx context.Context, scope *scope, index int, period Period) (*accumulator, error) {
	reservations, err := e.reservations.FetchReservationsOverlapping(ctx, period.Interval, scope.unitID)
	if err != nil {
		return nil, fmt.Errorf("%w: period %s: %v", booking.ErrDataFetchFailed, period.Label, err)
	}

	acc := newAccumulator()
	for _, r := range reservations {
		if !r.Status.Active() {
			continue
		}
		visible, err := scope.visible(ctx, r.UnitID)
		if err != nil {
			return nil, fmt.Errorf("%w: period %s: %v", booking.ErrDataFetchFailed, period.Label, err)
		}
		if !visible {
			continue
		}

		share := e.proration.Prorate(r, period.Interval)
		acc.add(index, r, share, calendar.OccupiedNights(r.Interval, period.Interval))
	}
	return acc, nil
}

func (e *Engine) buildResult(window calendar.Interval, windowDays int, granularity Granularity, periods []Period, scope *scope, acc *accumulator) *Result {
	result := &Result{
		Window:            window,
		Granularity:       granularity,
		Periods:           periods,
		PerUnit:           make(map[string][]decimal.Decimal),
		PerPlatform:       acc.perPlatform.Map(),
		PerFee:            acc.perFee.Map(),
		PeakPeriodRevenue: make(map[string]decimal.Decimal),
		TotalRevenue:      acc.perPeriod.Total(),
		OccupiedNights:    acc.occupiedNights,
		TotalReservations: len(acc.guests),
	}

	for i := range result.Periods {
		result.Periods[i].Revenue = acc.perPeriod.Get(i)
	}

	units := acc.units
	if scope.unitID != "" {
		units = map[string]struct{}{scope.unitID: {}}
	}
	peaks := aggregation.NewReducer[string](aggregation.Max)
	for unitID := range units {
		series := make([]decimal.Decimal, len(periods))
		for i := range periods {
			series[i] = acc.perUnit.Get(unitPeriod{unitID: unitID, period: i})
			peaks.Add(unitID, series[i])
		}
		result.PerUnit[unitID] = series
	}
	result.PeakPeriodRevenue = peaks.Map()

	for _, guests := range acc.guests {
		result.TotalGuests += guests
	}

	result.PossibleNights = scope.unitCount * windowDays
	result.OccupancyRate = OccupancyRate(result.OccupiedNights, result.PossibleNights)
	return result
}

// OccupancyRate is round(100 * occupied / possible), half away from zero; 0 when nothing is possible.
func OccupancyRate(occupied, possible int) int64 {
	if possible <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(occupied) * 100).
		Div(decimal.NewFromInt(int64(possible))).
		Round(0).
		IntPart()
}

type unitPeriod struct {
	unitID string
	period int
}

// accumulator holds the partial sums of one or more periods.
type accumulator struct {
	perPeriod      *aggregation.Reducer[int]
	perUnit        *aggregation.Reducer[unitPeriod]
	perPlatform    *aggregation.Reducer[string]
	perFee         *aggregation.Reducer[string]
	units          map[string]struct{}
	guests         map[string]int
	occupiedNights int
}

func newAccumulator() *accumulator {
	return &accumulator{
		perPeriod:   aggregation.NewSum[int](),
		perUnit:     aggregation.NewSum[unitPeriod](),
		perPlatform: aggregation.NewSum[string](),
		perFee:      aggregation.NewSum[string](),
		units:       make(map[string]struct{}),
		guests:      make(map[string]int),
	}
}

func (a *accumulator) add(period int, r booking.MonetaryReservation, share proration.Share, nights int) {
	a.perPeriod.Add(period, share.Amount)
	a.perUnit.Add(unitPeriod{unitID: r.UnitID, period: period}, share.Amount)
	a.perPlatform.Add(r.Platform, share.Amount)
	for name, amount := range share.Fees {
		a.perFee.Add(name, amount)
	}
	a.units[r.UnitID] = struct{}{}
	a.guests[r.ID] = r.Guests
	a.occupiedNights += nights
}

func (a *accumulator) merge(other *accumulator) {
	a.perPeriod.Merge(other.perPeriod)
	a.perUnit.Merge(other.perUnit)
	a.perPlatform.Merge(other.perPlatform)
	a.perFee.Merge(other.perFee)
	for unitID := range other.units {
		a.units[unitID] = struct{}{}
	}
	for id, guests := range other.guests {
		a.guests[id] = guests
	}
	a.occupiedNights += other.occupiedNights
}

// scope is the set of units a query may see.
type scope struct {
	unitID    string
	ownerID   string
	unitCount int
	units     storage.UnitStore

	mu      sync.Mutex
	visited map[string]bool
}

func (e *Engine) resolveScope(ctx context.Context, q Query) (*scope, error) {
	s := &scope{
		unitID:  q.UnitID,
		ownerID: q.OwnerID,
		units:   e.units,
		visited: make(map[string]bool),
	}

	if q.UnitID != "" {
		unit, err := e.units.FetchUnit(ctx, q.UnitID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", booking.ErrUnitNotFound, q.UnitID)
			}
			return nil, fmt.Errorf("%w: fetch unit %s: %v", booking.ErrDataFetchFailed, q.UnitID, err)
		}
		if !unit.OwnedBy(q.OwnerID) {
			return nil, fmt.Errorf("%w: %s", booking.ErrNotOwned, q.UnitID)
		}
		s.unitCount = 1
		return s, nil
	}

	count, err := e.units.FetchUnitCount(ctx, q.OwnerID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: count units: %v", booking.ErrDataFetchFailed, err)
	}
	s.unitCount = count
	return s, nil
}

// visible reports whether a reservation on unitID belongs to the query's scope. Without a
// unit filter only active units of the owner count, matching the unit count used for
// possible nights. Lookups are memoized for the duration of one query.
func (s *scope) visible(ctx context.Context, unitID string) (bool, error) {
	if s.unitID != "" {
		return unitID == s.unitID, nil
	}

	s.mu.Lock()
	ok, seen := s.visited[unitID]
	s.mu.Unlock()
	if seen {
		return ok, nil
	}

	unit, err := s.units.FetchUnit(ctx, unitID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ok = false
	case err != nil:
		return false, err
	default:
		ok = unit.Active && unit.OwnedBy(s.ownerID)
	}

	s.mu.Lock()
	s.visited[unitID] = ok
	s.mu.Unlock()
	return ok, nil
}
