package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supplementsafetybible/backend/profile"
)

// PGRevenueStore persists revenue ledger entries in postgres.
type PGRevenueStore struct {
	db *pgxpool.Pool
}

func NewPGRevenueStore(db *pgxpool.Pool) *PGRevenueStore {
	return &PGRevenueStore{db: db}
}

var _ RevenueStore = (*PGRevenueStore)(nil)

func (s *PGRevenueStore) Insert(ctx context.Context, record RevenueRecord) error {
	var userID any
	if record.UserID != uuid.Nil {
		userID = record.UserID
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO revenue_tracking
			(user_id, user_email, payment_id, tier, amount_cents, fee_cents, referral_code, reinvested)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`,
		userID, record.UserEmail, record.PaymentID, string(record.Tier),
		record.AmountCents, record.FeeCents, record.ReferralCode, record.Reinvested)
	if err != nil {
		return fmt.Errorf("insert revenue record: %w", err)
	}
	return nil
}

// PGReferralStore persists referral conversions in postgres.
type PGReferralStore struct {
	db *pgxpool.Pool
}

func NewPGReferralStore(db *pgxpool.Pool) *PGReferralStore {
	return &PGReferralStore{db: db}
}

var _ ReferralStore = (*PGReferralStore)(nil)

// MarkConverted flips the referral row for the (code, referred user) pair
// to converted. The NOT converted guard makes the flip monotonic under
// webhook replays: an already converted row keeps its original conversion
// data. Updating zero rows is not an error, referral tracking is best
// effort.
func (s *PGReferralStore) MarkConverted(ctx context.Context, code string, userID uuid.UUID, tier profile.Plan, revenueCents int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE referral_tracking
		SET converted_to_pro = TRUE,
			converted_at = now(),
			converted_tier = $3,
			revenue_cents = $4
		WHERE referral_code = $1 AND referred_user_id = $2 AND NOT converted_to_pro`,
		code, userID, string(tier), revenueCents)
	if err != nil {
		return fmt.Errorf("mark referral converted: %w", err)
	}
	return nil
}
