package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/supplementsafetybible/backend/profile"
)

// Counter reports how many quota-limited actions an identifier performed
// since a point in time. The identifier is an email for signed-in users or
// a guest session token.
type Counter interface {
	CountSince(ctx context.Context, identifier string, since time.Time) (int64, error)
	Record(ctx context.Context, identifier string) error
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed bool
	Used    int64
	Limit   int64 // profile.Unlimited when the plan has no cap
}

// Gate enforces per-plan monthly quotas. It fails open: when the counter
// is unreachable the action is allowed, since blocking paying or trial
// users on an infrastructure hiccup is worse than a few free reports.
type Gate struct {
	counter Counter
	log     *slog.Logger
	now     func() time.Time
}

// NewGate creates a quota gate over the given counter.
func NewGate(counter Counter, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{
		counter: counter,
		log:     log.With("component", "usage.gate"),
		now:     time.Now,
	}
}

// Check decides whether the identifier may perform another action this
// calendar month under the given plan.
func (g *Gate) Check(ctx context.Context, identifier string, plan profile.Plan) Decision {
	limit := plan.MonthlyReportLimit()
	if limit == profile.Unlimited {
		return Decision{Allowed: true, Limit: limit}
	}

	used, err := g.counter.CountSince(ctx, identifier, monthStart(g.now()))
	if err != nil {
		g.log.Warn("usage counter unavailable, allowing action", "error", err, "identifier", identifier)
		return Decision{Allowed: true, Limit: limit}
	}
	return Decision{Allowed: used < limit, Used: used, Limit: limit}
}

// RecordUsage logs one consumed action. Best effort: failures are logged
// and never block the action that already happened.
func (g *Gate) RecordUsage(ctx context.Context, identifier string) {
	if err := g.counter.Record(ctx, identifier); err != nil {
		g.log.Warn("failed to record usage", "error", err, "identifier", identifier)
	}
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
