package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/rentops-lab/rentops/internal/aggregation"
	v1 "github.com/rentops-lab/rentops/internal/api/v1"
)

// NewReport renders an aggregation result for the API. Amounts are rounded to cents here
// and nowhere earlier.
func NewReport(q aggregation.Query, r *aggregation.Result) v1.RevenueReport {
	report := v1.RevenueReport{
		StartDate:         q.Start.String(),
		EndDate:           q.End.String(),
		UnitID:            q.UnitID,
		Granularity:       string(r.Granularity),
		Periods:           make([]v1.PeriodView, 0, len(r.Periods)),
		PerUnit:           make(map[string][]string, len(r.PerUnit)),
		PerPlatform:       money(r.PerPlatform),
		PerFee:            money(r.PerFee),
		PeakPerUnit:       money(r.PeakPeriodRevenue),
		TotalRevenue:      r.TotalRevenue.StringFixed(2),
		OccupancyRate:     r.OccupancyRate,
		OccupiedNights:    r.OccupiedNights,
		PossibleNights:    r.PossibleNights,
		TotalReservations: r.TotalReservations,
		TotalGuests:       r.TotalGuests,
	}

	for _, p := range r.Periods {
		report.Periods = append(report.Periods, v1.PeriodView{
			Label:     p.Label,
			StartDate: p.Interval.Start.String(),
			EndDate:   p.Interval.End.AddDays(-1).String(),
			Revenue:   p.Revenue.StringFixed(2),
		})
	}
	for unitID, series := range r.PerUnit {
		values := make([]string, len(series))
		for i, v := range series {
			values[i] = v.StringFixed(2)
		}
		report.PerUnit[unitID] = values
	}
	return report
}

func money(in map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(in))
	for key, v := range in {
		out[key] = v.StringFixed(2)
	}
	return out
}
