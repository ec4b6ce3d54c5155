package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Update carries a partial profile mutation. Nil fields are left untouched,
// which is how the customer-id "never cleared" invariant is preserved:
// callers that do not know the customer id simply leave it nil.
type Update struct {
	Plan             *Plan
	Status           *Status
	CurrentPeriodEnd *time.Time
	CustomerID       *string
	SubscriptionID   *string
	ChecksRemaining  *int
}

// Store defines profile persistence. Every mutation is keyed by a natural
// identifier (email or payment-platform customer id), never a blind insert,
// so replayed webhook deliveries converge on the same row.
type Store interface {
	// ByID retrieves a profile by its identity-platform id.
	// Returns ErrProfileNotFound if no profile exists.
	ByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// ByEmail retrieves a profile by email.
	ByEmail(ctx context.Context, email string) (*Profile, error)

	// ByCustomerID retrieves a profile by its payment-platform customer id.
	ByCustomerID(ctx context.Context, customerID string) (*Profile, error)

	// CreateDefault inserts a starter profile for the email, or returns the
	// existing row when one already exists (upsert by email).
	CreateDefault(ctx context.Context, email string) (*Profile, error)

	// UpdateByEmail applies a partial update to the profile with the given
	// email. Returns ErrProfileNotFound when no row matches; it never
	// creates one. Base profiles come from signup or CreateDefault.
	UpdateByEmail(ctx context.Context, email string, update Update) error

	// SetCustomerID links a payment-platform customer to the profile.
	SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

// Ptr returns a pointer to v, convenience for building Update values.
func Ptr[T any](v T) *T { return &v }
