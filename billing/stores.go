package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/supplementsafetybible/backend/profile"
)

// RevenueRecord is one ledger entry: a payment with its estimated
// processor fee. Amounts are integer cents.
type RevenueRecord struct {
	UserID       uuid.UUID
	UserEmail    string
	PaymentID    string
	Tier         profile.Plan
	AmountCents  int64
	FeeCents     int64
	ReferralCode string
	Reinvested   bool
}

// RevenueStore appends to the revenue ledger. Inserts are not deduplicated
// by payment id; the ledger mirrors deliveries and reporting tolerates
// replays.
type RevenueStore interface {
	Insert(ctx context.Context, record RevenueRecord) error
}

// ReferralStore marks referral conversions. A conversion is monotonic:
// once converted, later deliveries must not un-convert or re-credit it.
type ReferralStore interface {
	MarkConverted(ctx context.Context, code string, userID uuid.UUID, tier profile.Plan, revenueCents int64) error
}

// GuestSessionStore links anonymous pre-checkout sessions to the paying
// customer so guest usage history survives signup.
type GuestSessionStore interface {
	MarkConverted(ctx context.Context, token, customerID string) error
}
