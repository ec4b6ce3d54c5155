package billing

import (
	"context"
	"time"

	"github.com/supplementsafetybible/backend/profile"
)

// SubscriptionInfo is the provider-neutral view of a subscription.
type SubscriptionInfo struct {
	ID               string
	Status           string
	PriceID          string
	Interval         string
	CurrentPeriodEnd *time.Time
}

// CheckoutSessionInfo is the provider-neutral view of a checkout session.
type CheckoutSessionInfo struct {
	ID            string
	URL           string
	CustomerEmail string
}

// Price is one live recurring price, as shown on the pricing grid.
type Price struct {
	ID              string
	ProductName     string
	Currency        string
	UnitAmountCents int64
	Interval        string
	Plan            profile.Plan
}

// CheckoutSessionParams describes a new checkout session.
type CheckoutSessionParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
	// ClientReference carries the referral code through checkout.
	ClientReference string
}

// Provider abstracts the payment platform. The concrete implementation
// talks to Stripe; tests substitute a mock.
type Provider interface {
	// VerifyWebhook checks the delivery signature and classifies the event.
	// Returns ErrInvalidSignature when verification fails.
	VerifyWebhook(payload []byte, signature string) (*Event, error)

	// Subscription retrieves a subscription by id.
	Subscription(ctx context.Context, id string) (*SubscriptionInfo, error)

	// CheckoutSession retrieves a checkout session by id.
	CheckoutSession(ctx context.Context, id string) (*CheckoutSessionInfo, error)

	// CreateCheckoutSession starts a subscription checkout and returns the
	// hosted payment page.
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSessionInfo, error)

	// CreateBillingPortalSession returns a customer self-service portal URL.
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	// CreateCustomer registers a customer and returns its id.
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error)

	// Prices lists the active recurring prices for the pricing grid.
	Prices(ctx context.Context) ([]Price, error)
}
