package billing

import (
	"strings"

	"github.com/supplementsafetybible/backend/profile"
)

// PriceConfig maps configured payment-platform price ids to plans.
// Fields are optional at startup; endpoints that need them report which
// ones are missing instead of failing to boot.
type PriceConfig struct {
	ProMonthly     string `env:"STRIPE_PRICE_ID_PRO_MONTHLY"`
	ProAnnual      string `env:"STRIPE_PRICE_ID_PRO_ANNUAL"`
	PremiumMonthly string `env:"STRIPE_PRICE_ID_PREMIUM_MONTHLY"`
	PremiumAnnual  string `env:"STRIPE_PRICE_ID_PREMIUM_ANNUAL"`
}

// Missing returns the names of unset price id variables, in a stable order.
func (c PriceConfig) Missing() []string {
	var missing []string
	for _, v := range []struct{ name, val string }{
		{"STRIPE_PRICE_ID_PRO_MONTHLY", c.ProMonthly},
		{"STRIPE_PRICE_ID_PRO_ANNUAL", c.ProAnnual},
		{"STRIPE_PRICE_ID_PREMIUM_MONTHLY", c.PremiumMonthly},
		{"STRIPE_PRICE_ID_PREMIUM_ANNUAL", c.PremiumAnnual},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

// PriceFor maps a checkout plan key ("pro_monthly", "premium_annual", ...)
// to its configured price id and plan. Returns ErrUnknownPlan for anything
// else.
func (c PriceConfig) PriceFor(planKey string) (string, profile.Plan, error) {
	switch strings.ToLower(strings.TrimSpace(planKey)) {
	case "pro_monthly":
		return c.ProMonthly, profile.PlanPro, nil
	case "pro_annual":
		return c.ProAnnual, profile.PlanPro, nil
	case "premium_monthly":
		return c.PremiumMonthly, profile.PlanPremium, nil
	case "premium_annual":
		return c.PremiumAnnual, profile.PlanPremium, nil
	default:
		return "", "", ErrUnknownPlan
	}
}

// ResolveTier maps a price id to a plan. Configured ids match exactly;
// unknown ids fall back to keyword matching on the id itself so renamed
// or legacy prices still land on a sensible tier. Everything else,
// including an empty id, defaults to pro: the event came from a paid
// subscription, and misclassifying a paying customer upward is cheaper
// to fix than downgrading them.
func ResolveTier(cfg PriceConfig, priceID string) profile.Plan {
	// Exact matches only count against configured values, so an unset
	// price variable never captures the empty id.
	if priceID != "" {
		switch priceID {
		case cfg.ProMonthly, cfg.ProAnnual:
			return profile.PlanPro
		case cfg.PremiumMonthly, cfg.PremiumAnnual:
			return profile.PlanPremium
		}
	}

	id := strings.ToLower(priceID)
	switch {
	case strings.Contains(id, "starter"), strings.Contains(id, "free"):
		return profile.PlanStarter
	case strings.Contains(id, "pro"):
		return profile.PlanPro
	case strings.Contains(id, "premium"), strings.Contains(id, "enterprise"):
		return profile.PlanPremium
	default:
		return profile.PlanPro
	}
}
