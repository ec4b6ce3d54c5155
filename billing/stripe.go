package billing

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds payment platform credentials. Both values are optional
// at startup; endpoints that need them report missing configuration instead
// of failing to boot.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// StripeProvider implements Provider on Stripe.
type StripeProvider struct {
	cfg    StripeConfig
	prices PriceConfig
}

// NewStripeProvider creates a Stripe-backed provider and installs the API
// key for the stripe-go package clients. The price configuration maps
// listed prices back to plans.
func NewStripeProvider(cfg StripeConfig, prices PriceConfig) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg, prices: prices}
}

var _ Provider = (*StripeProvider)(nil)

// WebhookConfigured reports whether the signing secret is set. The webhook
// endpoint refuses deliveries outright without it rather than accepting
// unverifiable payloads.
func (p *StripeProvider) WebhookConfigured() bool {
	return p.cfg.WebhookSecret != ""
}

func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return &Event{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: classifyEventType(string(event.Type)),
		Raw:  event.Data.Raw,
	}, nil
}

func classifyEventType(eventType string) EventKind {
	switch eventType {
	case "checkout.session.completed":
		return KindCheckoutCompleted
	case "customer.subscription.updated":
		return KindSubscriptionUpdated
	case "customer.subscription.deleted":
		return KindSubscriptionDeleted
	case "invoice.paid", "invoice.payment_succeeded":
		return KindInvoicePaid
	case "invoice.payment_failed":
		return KindInvoicePaymentFailed
	default:
		return KindUnhandled
	}
}

func (p *StripeProvider) Subscription(ctx context.Context, id string) (*SubscriptionInfo, error) {
	sub, err := subscription.Get(id, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", id, err)
	}

	info := &SubscriptionInfo{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			info.PriceID = item.Price.ID
			if item.Price.Recurring != nil {
				info.Interval = string(item.Price.Recurring.Interval)
			}
		}
		if item.CurrentPeriodEnd > 0 {
			end := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			info.CurrentPeriodEnd = &end
		}
	}
	return info, nil
}

func (p *StripeProvider) CheckoutSession(ctx context.Context, id string) (*CheckoutSessionInfo, error) {
	sess, err := checkoutsession.Get(id, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	info := &CheckoutSessionInfo{ID: sess.ID, URL: sess.URL, CustomerEmail: sess.CustomerEmail}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		info.CustomerEmail = sess.CustomerDetails.Email
	}
	return info, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSessionInfo, error) {
	if p.cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}
	sessParams := &stripe.CheckoutSessionParams{
		Params:              stripe.Params{Context: ctx},
		Mode:                stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:            stripe.String(params.CustomerID),
		SuccessURL:          stripe.String(params.SuccessURL),
		CancelURL:           stripe.String(params.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if params.ClientReference != "" {
		sessParams.ClientReferenceID = stripe.String(params.ClientReference)
	}
	for k, v := range params.Metadata {
		sessParams.AddMetadata(k, v)
	}

	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSessionInfo{ID: sess.ID, URL: sess.URL, CustomerEmail: sess.CustomerEmail}, nil
}

func (p *StripeProvider) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if p.cfg.SecretKey == "" {
		return "", ErrMissingSecretKey
	}
	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// Prices lists the active recurring prices, each resolved to the plan it
// sells. One-time prices are skipped; the pricing grid only shows
// subscriptions.
func (p *StripeProvider) Prices(ctx context.Context) ([]Price, error) {
	if p.cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}
	listParams := &stripe.PriceListParams{Active: stripe.Bool(true)}
	listParams.Context = ctx
	listParams.AddExpand("data.product")

	var out []Price
	iter := price.List(listParams)
	for iter.Next() {
		pr := iter.Price()
		if pr.Recurring == nil {
			continue
		}
		item := Price{
			ID:              pr.ID,
			Currency:        string(pr.Currency),
			UnitAmountCents: pr.UnitAmount,
			Interval:        string(pr.Recurring.Interval),
			Plan:            ResolveTier(p.prices, pr.ID),
		}
		if pr.Product != nil {
			item.ProductName = pr.Product.Name
		}
		out = append(out, item)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return out, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	if p.cfg.SecretKey == "" {
		return "", ErrMissingSecretKey
	}
	custParams := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	for k, v := range metadata {
		custParams.AddMetadata(k, v)
	}
	cust, err := customer.New(custParams)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cust.ID, nil
}
