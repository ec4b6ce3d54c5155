package profile

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents the subscription tier governing feature limits.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

const (
	// Unlimited indicates no limit for a counted resource (-1 chosen for SQL compatibility).
	Unlimited int64 = -1

	// StarterMonthlyReports is the number of report generations a starter
	// account gets per calendar month.
	StarterMonthlyReports int64 = 5

	// unlimitedSentinel is what the profile endpoint reports for plans
	// without a cap; clients treat it as "no limit".
	unlimitedSentinel = 999999
)

// ParsePlan normalizes a stored plan value, defaulting unknown values to starter.
func ParsePlan(s string) Plan {
	switch Plan(s) {
	case PlanPro:
		return PlanPro
	case PlanPremium:
		return PlanPremium
	default:
		return PlanStarter
	}
}

// MonthlyReportLimit returns the per-month report quota for the plan.
func (p Plan) MonthlyReportLimit() int64 {
	if p == PlanStarter {
		return StarterMonthlyReports
	}
	return Unlimited
}

// Status represents the subscription lifecycle state mirrored from the
// payment platform.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusNone     Status = "none"
)

// Role distinguishes regular users from admins.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the per-user account record. Email is the natural key used to
// match payments made before an account existed.
type Profile struct {
	ID               uuid.UUID
	Email            string
	Plan             Plan
	Status           Status
	CurrentPeriodEnd *time.Time
	CustomerID       string // payment platform customer reference, never cleared once set
	SubscriptionID   string
	ChecksRemaining  *int // nil means "use the tier default"
	Role             Role
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveChecksRemaining resolves the nullable counter against tier
// defaults: 5 for starter, effectively unlimited for paid tiers.
func (p *Profile) EffectiveChecksRemaining() int {
	if p.ChecksRemaining != nil {
		return *p.ChecksRemaining
	}
	if p.Plan == PlanStarter {
		return int(StarterMonthlyReports)
	}
	return unlimitedSentinel
}
