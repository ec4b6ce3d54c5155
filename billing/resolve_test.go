package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplementsafetybible/backend/billing"
	"github.com/supplementsafetybible/backend/profile"
)

var testPrices = billing.PriceConfig{
	ProMonthly:     "price_pro_m",
	ProAnnual:      "price_pro_y",
	PremiumMonthly: "price_prem_m",
	PremiumAnnual:  "price_prem_y",
}

func TestResolveTier(t *testing.T) {
	t.Parallel()

	t.Run("configured ids match exactly", func(t *testing.T) {
		assert.Equal(t, profile.PlanPro, billing.ResolveTier(testPrices, "price_pro_m"))
		assert.Equal(t, profile.PlanPro, billing.ResolveTier(testPrices, "price_pro_y"))
		assert.Equal(t, profile.PlanPremium, billing.ResolveTier(testPrices, "price_prem_m"))
		assert.Equal(t, profile.PlanPremium, billing.ResolveTier(testPrices, "price_prem_y"))
	})

	t.Run("keyword fallback", func(t *testing.T) {
		assert.Equal(t, profile.PlanStarter, billing.ResolveTier(testPrices, "price_STARTER_2024"))
		assert.Equal(t, profile.PlanStarter, billing.ResolveTier(testPrices, "price_free_tier"))
		assert.Equal(t, profile.PlanPro, billing.ResolveTier(testPrices, "price_professional"))
		assert.Equal(t, profile.PlanPremium, billing.ResolveTier(testPrices, "price_Premium_legacy"))
		assert.Equal(t, profile.PlanPremium, billing.ResolveTier(testPrices, "price_enterprise"))
	})

	t.Run("unknown ids default to pro", func(t *testing.T) {
		assert.Equal(t, profile.PlanPro, billing.ResolveTier(testPrices, "price_1AbC2dEf"))
	})

	t.Run("empty id defaults to pro", func(t *testing.T) {
		assert.Equal(t, profile.PlanPro, billing.ResolveTier(testPrices, ""))
	})

	t.Run("exact config match wins over keywords", func(t *testing.T) {
		cfg := billing.PriceConfig{
			ProMonthly:     "price_pro_m",
			ProAnnual:      "price_pro_y",
			PremiumMonthly: "price_pro_special",
			PremiumAnnual:  "price_prem_y",
		}
		// The id reads like a pro price but is configured as premium
		// monthly; the configured mapping decides.
		assert.Equal(t, profile.PlanPremium, billing.ResolveTier(cfg, "price_pro_special"))
	})

	t.Run("unset config values never match", func(t *testing.T) {
		// A blank config must not capture ids through the empty-string
		// case arms; resolution falls through to keywords.
		assert.Equal(t, profile.PlanStarter, billing.ResolveTier(billing.PriceConfig{}, "price_starter"))
	})

	t.Run("every input resolves to a valid plan", func(t *testing.T) {
		for _, id := range []string{"", "x", "price_pro_m", "price_whatever", "PRICE_PREMIUM"} {
			tier := billing.ResolveTier(testPrices, id)
			assert.Contains(t, []profile.Plan{profile.PlanStarter, profile.PlanPro, profile.PlanPremium}, tier)
		}
	})
}

func TestPriceFor(t *testing.T) {
	t.Parallel()

	id, plan, err := testPrices.PriceFor("pro_monthly")
	require.NoError(t, err)
	assert.Equal(t, "price_pro_m", id)
	assert.Equal(t, profile.PlanPro, plan)

	id, plan, err = testPrices.PriceFor(" Premium_Annual ")
	require.NoError(t, err)
	assert.Equal(t, "price_prem_y", id)
	assert.Equal(t, profile.PlanPremium, plan)

	_, _, err = testPrices.PriceFor("gold_monthly")
	assert.ErrorIs(t, err, billing.ErrUnknownPlan)
}

func TestPriceConfigMissing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, testPrices.Missing())

	partial := billing.PriceConfig{ProMonthly: "price_pro_m"}
	assert.Equal(t, []string{
		"STRIPE_PRICE_ID_PRO_ANNUAL",
		"STRIPE_PRICE_ID_PREMIUM_MONTHLY",
		"STRIPE_PRICE_ID_PREMIUM_ANNUAL",
	}, partial.Missing())
}
