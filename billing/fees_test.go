package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supplementsafetybible/backend/billing"
)

func TestProcessorFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amountCents int64
		want        int64
	}{
		{0, 30},
		{100, 32},     // floor(2.90) + 30
		{999, 58},     // floor(28.971) + 30
		{1000, 59},    // floor(29.00) + 30
		{1999, 87},    // floor(57.971) + 30
		{9900, 317},    // floor(287.1) + 30
		{100000, 2930}, // floor(2900) + 30
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, billing.ProcessorFee(tc.amountCents), "amount %d", tc.amountCents)
	}

	assert.Equal(t, int64(30), billing.ProcessorFee(-100), "negative amounts fall back to the flat fee")
}

func TestNetRevenue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(941), billing.NetRevenue(1000))
	assert.Equal(t, int64(-30), billing.NetRevenue(0))
}
