package reporting

import (
	"context"
	"log/slog"
	"time"

	"github.com/rentops-lab/rentops/internal/aggregation"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

const trailingDays = 30

// Warmer periodically recomputes the dashboard's default reports so that they are served
// from cache: the current month to date and the trailing 30 days, per owner scope.
type Warmer struct {
	interval time.Duration
	service  *Service
	owners   []string
	nowFn    func() time.Time
}

// NewWarmer creates a warmer. An empty owners list warms the unscoped report only.
func NewWarmer(interval time.Duration, service *Service, owners []string) *Warmer {
	if len(owners) == 0 {
		owners = []string{""}
	}
	return &Warmer{
		interval: interval,
		service:  service,
		owners:   owners,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Start warms once immediately and then on every tick until ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("[Warmer] Starting report cache warmer",
		"interval", w.interval,
		"owners", len(w.owners),
	)

	w.warm(ctx)

	for {
		select {
		case <-ticker.C:
			w.warm(ctx)
		case <-ctx.Done():
			slog.Info("[Warmer] Stopping (context cancelled)")
			return nil
		}
	}
}

// Queries returns the windows warmed for one owner on the given day.
func Queries(today calendar.Date, ownerID string) []aggregation.Query {
	return []aggregation.Query{
		{Start: calendar.StartOfMonth(today), End: today, OwnerID: ownerID},
		{Start: today.AddDays(-(trailingDays - 1)), End: today, OwnerID: ownerID},
	}
}

func (w *Warmer) warm(ctx context.Context) {
	today := calendar.DateOf(w.nowFn())
	warmed := 0
	for _, owner := range w.owners {
		for _, q := range Queries(today, owner) {
			select {
			case <-ctx.Done():
				slog.Info("[Warmer] Warm interrupted by context cancellation", "reports_warmed", warmed)
				return
			default:
			}

			if _, err := w.service.Refresh(ctx, q); err != nil {
				slog.Error("[Warmer] Report refresh failed",
					"error", err,
					"owner_id", q.OwnerID,
					"start", q.Start.String(),
					"end", q.End.String(),
				)
				continue
			}
			warmed++
		}
	}
	slog.Debug("[Warmer] Warm complete", "reports_warmed", warmed)
}
