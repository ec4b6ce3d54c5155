package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supplementsafetybible/backend/profile"
)

func TestParsePlan(t *testing.T) {
	t.Parallel()

	assert.Equal(t, profile.PlanPro, profile.ParsePlan("pro"))
	assert.Equal(t, profile.PlanPremium, profile.ParsePlan("premium"))
	assert.Equal(t, profile.PlanStarter, profile.ParsePlan("starter"))
	assert.Equal(t, profile.PlanStarter, profile.ParsePlan(""))
	assert.Equal(t, profile.PlanStarter, profile.ParsePlan("enterprise"))
}

func TestMonthlyReportLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, profile.StarterMonthlyReports, profile.PlanStarter.MonthlyReportLimit())
	assert.Equal(t, profile.Unlimited, profile.PlanPro.MonthlyReportLimit())
	assert.Equal(t, profile.Unlimited, profile.PlanPremium.MonthlyReportLimit())
}

func TestEffectiveChecksRemaining(t *testing.T) {
	t.Parallel()

	t.Run("explicit counter wins", func(t *testing.T) {
		p := &profile.Profile{Plan: profile.PlanStarter, ChecksRemaining: profile.Ptr(2)}
		assert.Equal(t, 2, p.EffectiveChecksRemaining())
	})

	t.Run("starter defaults to five", func(t *testing.T) {
		p := &profile.Profile{Plan: profile.PlanStarter}
		assert.Equal(t, 5, p.EffectiveChecksRemaining())
	})

	t.Run("paid plans default to unlimited", func(t *testing.T) {
		pro := &profile.Profile{Plan: profile.PlanPro}
		premium := &profile.Profile{Plan: profile.PlanPremium}
		assert.Equal(t, 999999, pro.EffectiveChecksRemaining())
		assert.Equal(t, 999999, premium.EffectiveChecksRemaining())
	})
}
