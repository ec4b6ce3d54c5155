package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supplementsafetybible/backend/pkg/pg"
)

// PGStore is the postgres-backed Store implementation.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a postgres profile store on the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

const profileColumns = `id, email, plan, subscription_status, current_period_end,
	COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
	checks_remaining, role, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var (
		p    Profile
		plan string
		st   string
		role string
	)
	err := row.Scan(&p.ID, &p.Email, &plan, &st, &p.CurrentPeriodEnd,
		&p.CustomerID, &p.SubscriptionID, &p.ChecksRemaining, &role,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.Plan = ParsePlan(plan)
	p.Status = Status(st)
	p.Role = Role(role)
	return &p, nil
}

func (s *PGStore) ByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (s *PGStore) ByEmail(ctx context.Context, email string) (*Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email)
	return scanProfile(row)
}

func (s *PGStore) ByCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE stripe_customer_id = $1`, customerID)
	return scanProfile(row)
}

func (s *PGStore) CreateDefault(ctx context.Context, email string) (*Profile, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmptyEmail
	}
	// Upsert by email so concurrent first requests converge on one row.
	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (id, email, plan, subscription_status, role)
		VALUES ($1, lower($2), $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING `+profileColumns,
		uuid.New(), email, string(PlanStarter), string(StatusNone), string(RoleUser))
	return scanProfile(row)
}

func (s *PGStore) UpdateByEmail(ctx context.Context, email string, update Update) error {
	sets := []string{"updated_at = now()"}
	args := []any{email}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.Plan != nil {
		add("plan", string(*update.Plan))
	}
	if update.Status != nil {
		add("subscription_status", string(*update.Status))
	}
	if update.CurrentPeriodEnd != nil {
		add("current_period_end", *update.CurrentPeriodEnd)
	}
	if update.CustomerID != nil {
		// COALESCE keeps an already linked customer when the new value is empty.
		args = append(args, *update.CustomerID)
		sets = append(sets, fmt.Sprintf("stripe_customer_id = COALESCE(NULLIF($%d, ''), stripe_customer_id)", len(args)))
	}
	if update.SubscriptionID != nil {
		add("stripe_subscription_id", *update.SubscriptionID)
	}
	if update.ChecksRemaining != nil {
		add("checks_remaining", *update.ChecksRemaining)
	}

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE lower(email) = lower($1)", strings.Join(sets, ", "))
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile by email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *PGStore) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET stripe_customer_id = COALESCE(stripe_customer_id, $2), updated_at = now()
		WHERE id = $1`, id, customerID)
	if err != nil {
		return fmt.Errorf("set profile customer id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
