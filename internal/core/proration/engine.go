package proration

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

// Regime identifies which rule set attributed a share.
type Regime string

const (
	RegimeShortStay Regime = "short_stay"
	RegimeLongStay  Regime = "long_stay"
)

// MonthCount selects how a long stay's month count is derived.
type MonthCount string

const (
	// MonthCountRounded is round(totalDays / MonthDivisorDays), at least 1.
	MonthCountRounded MonthCount = "rounded"
	// MonthCountCalendar is the number of calendar months the billable span touches.
	MonthCountCalendar MonthCount = "calendar"
)

// Policy holds the proration constants.
type Policy struct {
	LongStayThresholdDays int
	MonthDivisorDays      int
	MonthCount            MonthCount
}

// DefaultPolicy returns the standard 30-day threshold with rounded month counts.
func DefaultPolicy() Policy {
	return Policy{
		LongStayThresholdDays: 30,
		MonthDivisorDays:      30,
		MonthCount:            MonthCountRounded,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.LongStayThresholdDays <= 0 {
		p.LongStayThresholdDays = def.LongStayThresholdDays
	}
	if p.MonthDivisorDays <= 0 {
		p.MonthDivisorDays = def.MonthDivisorDays
	}
	if p.MonthCount == "" {
		p.MonthCount = def.MonthCount
	}
	return p
}

// ParseMonthCount validates a month-count mode string.
func ParseMonthCount(s string) (MonthCount, error) {
	switch MonthCount(s) {
	case MonthCountRounded, MonthCountCalendar:
		return MonthCount(s), nil
	default:
		return "", fmt.Errorf("unknown month count mode %q (expected rounded or calendar)", s)
	}
}

// Share is the part of a reservation attributed to one period. Amounts are unrounded.
type Share struct {
	Amount decimal.Decimal
	Fees   map[string]decimal.Decimal
	Regime Regime
	// BillableDays is the number of billable days of the reservation inside the period.
	BillableDays int
}

// Total is Amount plus every prorated fee.
func (s Share) Total() decimal.Decimal {
	total := s.Amount
	for _, fee := range s.Fees {
		total = total.Add(fee)
	}
	return total
}

// Engine apportions reservation value across reporting periods. It is stateless and safe for
// concurrent use.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy.normalized()}
}

// Policy returns the effective (normalized) policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// RegimeFor reports which rule set applies to a reservation.
func (e *Engine) RegimeFor(r booking.MonetaryReservation) Regime {
	if calendar.BillableDaySpan(r.Interval) > e.policy.LongStayThresholdDays {
		return RegimeLongStay
	}
	return RegimeShortStay
}

// Prorate computes the share of r attributable to period. period is half-open.
// Every fee is scaled by the same ratio as the total value.
func (e *Engine) Prorate(r booking.MonetaryReservation, period calendar.Interval) Share {
	regime := e.RegimeFor(r)
	share := Share{
		Amount:       decimal.Zero,
		Fees:         make(map[string]decimal.Decimal, len(r.Fees)),
		Regime:       regime,
		BillableDays: calendar.BillableDays(r.Interval, period),
	}

	var scale func(decimal.Decimal) decimal.Decimal
	switch regime {
	case RegimeLongStay:
		scale = e.longStayScale(r.Interval, period)
	default:
		scale = shortStayScale(r.Interval, share.BillableDays)
	}

	share.Amount = scale(r.TotalValue)
	for _, fee := range r.Fees {
		share.Fees[fee.Name] = share.Fees[fee.Name].Add(scale(fee.Amount))
	}
	return share
}

// shortStayScale returns x * overlap / totalDays; zero when the stay has no billable days.
func shortStayScale(stay calendar.Interval, overlap int) func(decimal.Decimal) decimal.Decimal {
	totalDays := calendar.BillableDaySpan(stay)
	if totalDays == 0 || overlap == 0 {
		return func(decimal.Decimal) decimal.Decimal { return decimal.Zero }
	}
	num := decimal.NewFromInt(int64(overlap))
	den := decimal.NewFromInt(int64(totalDays))
	return func(x decimal.Decimal) decimal.Decimal {
		return x.Mul(num).Div(den)
	}
}

// longStayScale splits period at calendar-month boundaries. A month fully covered by the
// reservation contributes x / totalMonths; a partly covered month contributes
// x / totalMonths / daysInMonth * overlap.
func (e *Engine) longStayScale(stay calendar.Interval, period calendar.Interval) func(decimal.Decimal) decimal.Decimal {
	billable := calendar.BillableInterval(stay)
	months := decimal.NewFromInt(int64(e.monthCount(stay)))

	type part struct {
		full    bool
		overlap decimal.Decimal
		dim     decimal.Decimal
	}
	var parts []part
	for _, month := range calendar.SplitByMonth(period) {
		overlap := calendar.OverlapDays(billable, month)
		if overlap == 0 {
			continue
		}
		dim := calendar.DaysInMonth(month.Start)
		parts = append(parts, part{
			full:    billable.Covers(calendar.MonthInterval(month.Start)),
			overlap: decimal.NewFromInt(int64(overlap)),
			dim:     decimal.NewFromInt(int64(dim)),
		})
	}

	return func(x decimal.Decimal) decimal.Decimal {
		amount := decimal.Zero
		for _, p := range parts {
			if p.full {
				amount = amount.Add(x.Div(months))
				continue
			}
			amount = amount.Add(x.Mul(p.overlap).Div(months.Mul(p.dim)))
		}
		return amount
	}
}

func (e *Engine) monthCount(stay calendar.Interval) int {
	if e.policy.MonthCount == MonthCountCalendar {
		return CalendarMonthsSpanned(stay)
	}
	return RoundedMonths(calendar.BillableDaySpan(stay), e.policy.MonthDivisorDays)
}

// RoundedMonths is max(1, round(totalDays / divisor)) with halves rounded up.
func RoundedMonths(totalDays, divisor int) int {
	if divisor <= 0 {
		divisor = DefaultPolicy().MonthDivisorDays
	}
	months := (2*totalDays + divisor) / (2 * divisor)
	if months < 1 {
		return 1
	}
	return months
}

// CalendarMonthsSpanned is the number of calendar months touched by the stay's billable span, at least 1.
func CalendarMonthsSpanned(stay calendar.Interval) int {
	months := calendar.MonthsSpanned(calendar.BillableInterval(stay))
	if months < 1 {
		return 1
	}
	return months
}
