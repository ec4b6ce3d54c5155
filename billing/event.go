package billing

import (
	"encoding/json"
	"time"
)

// EventKind is the closed set of webhook event categories the reconciler
// acts on. Everything else maps to KindUnhandled and is acknowledged
// without side effects.
type EventKind string

const (
	KindCheckoutCompleted    EventKind = "checkout.completed"
	KindSubscriptionUpdated  EventKind = "subscription.updated"
	KindSubscriptionDeleted  EventKind = "subscription.deleted"
	KindInvoicePaid          EventKind = "invoice.paid"
	KindInvoicePaymentFailed EventKind = "invoice.payment_failed"
	KindUnhandled            EventKind = "unhandled"
)

// Event is a verified webhook delivery. Raw holds the provider's object
// payload; handlers decode it into the typed payload they need.
type Event struct {
	ID   string
	Type string // provider's original event type string
	Kind EventKind
	Raw  json.RawMessage
}

// checkoutSessionPayload is the slice of a checkout.session.completed
// object the reconciler reads.
type checkoutSessionPayload struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	PaymentIntent   string `json:"payment_intent"`
	Mode            string `json:"mode"`
	AmountTotal     int64  `json:"amount_total"`
	ClientReference string `json:"client_reference_id"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// email prefers the verified customer_details value over the prefill field.
func (p checkoutSessionPayload) email() string {
	if p.CustomerDetails.Email != "" {
		return p.CustomerDetails.Email
	}
	return p.CustomerEmail
}

func (p checkoutSessionPayload) referralCode() string {
	if code, ok := p.Metadata["referral_code"]; ok && code != "" {
		return code
	}
	return p.ClientReference
}

func (p checkoutSessionPayload) guestToken() string {
	return p.Metadata["guest_session_token"]
}

// subscriptionPayload covers customer.subscription.updated/deleted objects.
// The billing period moved from the subscription to its items in newer API
// versions, so both locations are read.
type subscriptionPayload struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID        string `json:"id"`
				Recurring struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (p subscriptionPayload) priceID() string {
	if len(p.Items.Data) == 0 {
		return ""
	}
	return p.Items.Data[0].Price.ID
}

func (p subscriptionPayload) periodEnd() *time.Time {
	ts := p.CurrentPeriodEnd
	if ts == 0 && len(p.Items.Data) > 0 {
		ts = p.Items.Data[0].CurrentPeriodEnd
	}
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

// invoicePayload covers invoice.paid and invoice.payment_failed objects.
type invoicePayload struct {
	ID            string `json:"id"`
	Customer      string `json:"customer"`
	CustomerEmail string `json:"customer_email"`
	AmountPaid    int64  `json:"amount_paid"`
	BillingReason string `json:"billing_reason"`
	PaymentIntent string `json:"payment_intent"`
	Subscription  string `json:"subscription"`
	Parent        struct {
		SubscriptionDetails struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// subscriptionID reads the invoice's subscription reference from either
// the legacy top-level field or its newer parent location.
func (p invoicePayload) subscriptionID() string {
	if p.Subscription != "" {
		return p.Subscription
	}
	return p.Parent.SubscriptionDetails.Subscription
}
