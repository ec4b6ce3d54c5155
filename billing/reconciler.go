package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/supplementsafetybible/backend/identity"
	"github.com/supplementsafetybible/backend/profile"
)

// Reconciler applies verified webhook events to local state: account
// provisioning, profile subscription fields, and the revenue and referral
// ledgers. It is the single writer of subscription state; the rest of the
// system only reads what it wrote.
type Reconciler struct {
	provider  Provider
	directory identity.Directory
	profiles  profile.Store
	revenue   RevenueStore
	referrals ReferralStore
	guests    GuestSessionStore
	prices    PriceConfig
	log       *slog.Logger
}

// NewReconciler wires the reconciler. All collaborators are required
// except guests, which may be nil when guest sessions are disabled.
func NewReconciler(
	provider Provider,
	directory identity.Directory,
	profiles profile.Store,
	revenue RevenueStore,
	referrals ReferralStore,
	guests GuestSessionStore,
	prices PriceConfig,
	log *slog.Logger,
) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		provider:  provider,
		directory: directory,
		profiles:  profiles,
		revenue:   revenue,
		referrals: referrals,
		guests:    guests,
		prices:    prices,
		log:       log.With("component", "billing.reconciler"),
	}
}

// HandleEvent dispatches one verified event. Errors indicate the delivery
// could not be applied; the webhook endpoint logs them and still
// acknowledges the delivery, relying on state convergence from later
// events rather than provider retries.
func (r *Reconciler) HandleEvent(ctx context.Context, event *Event) error {
	log := r.log.With("event_id", event.ID, "event_type", event.Type)

	switch event.Kind {
	case KindCheckoutCompleted:
		var sess checkoutSessionPayload
		if err := json.Unmarshal(event.Raw, &sess); err != nil {
			return fmt.Errorf("%w: checkout session: %w", ErrMalformedEvent, err)
		}
		return r.handleCheckoutCompleted(ctx, log, sess)

	case KindSubscriptionUpdated:
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Raw, &sub); err != nil {
			return fmt.Errorf("%w: subscription: %w", ErrMalformedEvent, err)
		}
		return r.handleSubscriptionUpdated(ctx, log, sub)

	case KindSubscriptionDeleted:
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Raw, &sub); err != nil {
			return fmt.Errorf("%w: subscription: %w", ErrMalformedEvent, err)
		}
		return r.handleSubscriptionDeleted(ctx, log, sub)

	case KindInvoicePaid:
		var inv invoicePayload
		if err := json.Unmarshal(event.Raw, &inv); err != nil {
			return fmt.Errorf("%w: invoice: %w", ErrMalformedEvent, err)
		}
		return r.handleInvoicePaid(ctx, log, inv)

	case KindInvoicePaymentFailed:
		var inv invoicePayload
		if err := json.Unmarshal(event.Raw, &inv); err != nil {
			return fmt.Errorf("%w: invoice: %w", ErrMalformedEvent, err)
		}
		return r.handleInvoicePaymentFailed(ctx, log, inv)

	default:
		log.Debug("ignoring unhandled event")
		return nil
	}
}

// handleCheckoutCompleted provisions the account and records the initial
// payment. Each step degrades independently: a failure in one is logged
// and the rest still run, so a replayed delivery can fill the gaps.
func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, log *slog.Logger, sess checkoutSessionPayload) error {
	if token := sess.guestToken(); token != "" && r.guests != nil {
		if err := r.guests.MarkConverted(ctx, token, sess.Customer); err != nil {
			log.Warn("failed to convert guest session", "error", err)
		}
	}

	if sess.Subscription == "" {
		log.Info("checkout session has no subscription, skipping", "session_id", sess.ID)
		return nil
	}

	sub, err := r.provider.Subscription(ctx, sess.Subscription)
	if err != nil {
		return fmt.Errorf("retrieve subscription for checkout %s: %w", sess.ID, err)
	}
	tier := ResolveTier(r.prices, sub.PriceID)

	email := sess.email()
	if email == "" {
		log.Error("checkout session has no customer email", "session_id", sess.ID)
		return nil
	}

	r.provisionAccount(ctx, log, email, sess.Customer, tier)
	r.applySubscription(ctx, log, email, sess.Customer, sub, tier, profile.Status(sub.Status))

	// The ledger references the profile row. No profile means no entry;
	// a later delivery records it once the row exists.
	prof, err := r.profiles.ByEmail(ctx, email)
	if err != nil {
		log.Warn("no profile for paying email, skipping revenue record", "email", email, "error", err)
		return nil
	}
	r.recordRevenue(ctx, log, revenueParams{
		userID:       prof.ID,
		email:        email,
		paymentID:    firstNonEmpty(sess.PaymentIntent, sess.ID),
		tier:         tier,
		amountCents:  sess.AmountTotal,
		referralCode: sess.referralCode(),
	})
	return nil
}

// provisionAccount ensures an identity-platform account exists for the
// paying email. Provisioning failures are logged, not fatal: the rest of
// the delivery still applies and a replay can retry the creation.
func (r *Reconciler) provisionAccount(ctx context.Context, log *slog.Logger, email, customerID string, tier profile.Plan) {
	_, err := r.directory.UserByEmail(ctx, email)
	if err == nil {
		return
	}
	if !errors.Is(err, identity.ErrUserNotFound) {
		log.Error("failed to look up user", "error", err, "email", email)
		return
	}

	password, err := identity.GeneratePassword()
	if err != nil {
		log.Error("failed to generate password", "error", err)
		return
	}
	created, err := r.directory.CreateUser(ctx, identity.CreateUserParams{
		Email:          email,
		Password:       password,
		EmailConfirmed: true,
		Metadata: map[string]string{
			"created_via":        "stripe_payment",
			"stripe_customer_id": customerID,
			"plan":               string(tier),
		},
	})
	if err != nil {
		// An already-exists error means a concurrent delivery won the race.
		if !errors.Is(err, identity.ErrUserAlreadyExists) {
			log.Error("failed to provision account", "error", err, "email", email)
		}
		return
	}
	log.Info("provisioned account from payment", "email", email, "user_id", created.ID)
}

// applySubscription mirrors subscription state onto the profile by email.
// A missing profile is logged and skipped; the row appears on first login
// and later events converge it.
func (r *Reconciler) applySubscription(ctx context.Context, log *slog.Logger, email, customerID string, sub *SubscriptionInfo, tier profile.Plan, status profile.Status) {
	update := profile.Update{
		Plan:             &tier,
		Status:           &status,
		CustomerID:       &customerID,
		SubscriptionID:   &sub.ID,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}
	if err := r.profiles.UpdateByEmail(ctx, email, update); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("no profile for paying email, skipping update", "email", email)
			return
		}
		log.Error("failed to update profile", "error", err, "email", email)
	}
}

type revenueParams struct {
	userID       uuid.UUID
	email        string
	paymentID    string
	tier         profile.Plan
	amountCents  int64
	referralCode string
}

// recordRevenue appends a ledger entry and credits the referral, if any.
// Both writes are best effort.
func (r *Reconciler) recordRevenue(ctx context.Context, log *slog.Logger, params revenueParams) {
	if params.amountCents <= 0 {
		return
	}
	record := RevenueRecord{
		UserID:       params.userID,
		UserEmail:    params.email,
		PaymentID:    params.paymentID,
		Tier:         params.tier,
		AmountCents:  params.amountCents,
		FeeCents:     ProcessorFee(params.amountCents),
		ReferralCode: params.referralCode,
	}
	if err := r.revenue.Insert(ctx, record); err != nil {
		log.Error("failed to record revenue", "error", err, "payment_id", params.paymentID)
		return
	}
	if params.referralCode != "" {
		if err := r.referrals.MarkConverted(ctx, params.referralCode, params.userID, params.tier, params.amountCents); err != nil {
			log.Warn("failed to mark referral converted", "error", err, "referral_code", params.referralCode)
		}
	}
}

func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, log *slog.Logger, sub subscriptionPayload) error {
	if sub.Customer == "" {
		return ErrMissingCustomerRef
	}
	prof, err := r.profiles.ByCustomerID(ctx, sub.Customer)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("no profile for customer, skipping subscription update", "customer_id", sub.Customer)
			return nil
		}
		return fmt.Errorf("look up profile for customer %s: %w", sub.Customer, err)
	}

	tier := ResolveTier(r.prices, sub.priceID())
	status := profile.Status(sub.Status)
	update := profile.Update{
		Plan:             &tier,
		Status:           &status,
		SubscriptionID:   &sub.ID,
		CurrentPeriodEnd: sub.periodEnd(),
	}
	if err := r.profiles.UpdateByEmail(ctx, prof.Email, update); err != nil {
		return fmt.Errorf("apply subscription update for %s: %w", prof.Email, err)
	}
	log.Info("subscription updated", "email", prof.Email, "plan", tier, "status", status)
	return nil
}

// handleSubscriptionDeleted downgrades the profile to starter. The customer
// link and ledger history are kept.
func (r *Reconciler) handleSubscriptionDeleted(ctx context.Context, log *slog.Logger, sub subscriptionPayload) error {
	if sub.Customer == "" {
		return ErrMissingCustomerRef
	}
	prof, err := r.profiles.ByCustomerID(ctx, sub.Customer)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("no profile for customer, skipping subscription deletion", "customer_id", sub.Customer)
			return nil
		}
		return fmt.Errorf("look up profile for customer %s: %w", sub.Customer, err)
	}

	update := profile.Update{
		Plan:   profile.Ptr(profile.PlanStarter),
		Status: profile.Ptr(profile.StatusCanceled),
	}
	if err := r.profiles.UpdateByEmail(ctx, prof.Email, update); err != nil {
		return fmt.Errorf("apply subscription deletion for %s: %w", prof.Email, err)
	}
	log.Info("subscription canceled, downgraded to starter", "email", prof.Email)
	return nil
}

// handleInvoicePaid records renewal revenue. Initial payments are recorded
// by the checkout handler, so only subscription_cycle invoices count here.
func (r *Reconciler) handleInvoicePaid(ctx context.Context, log *slog.Logger, inv invoicePayload) error {
	if inv.BillingReason != "subscription_cycle" {
		log.Debug("ignoring non-renewal invoice", "billing_reason", inv.BillingReason)
		return nil
	}
	subID := inv.subscriptionID()
	if subID == "" {
		log.Info("renewal invoice has no subscription, skipping", "invoice_id", inv.ID)
		return nil
	}

	sub, err := r.provider.Subscription(ctx, subID)
	if err != nil {
		return fmt.Errorf("retrieve subscription for invoice %s: %w", inv.ID, err)
	}
	tier := ResolveTier(r.prices, sub.PriceID)

	prof, err := r.profiles.ByCustomerID(ctx, inv.Customer)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("no profile for customer, skipping renewal revenue", "customer_id", inv.Customer)
			return nil
		}
		return fmt.Errorf("look up profile for customer %s: %w", inv.Customer, err)
	}
	r.applySubscription(ctx, log, prof.Email, inv.Customer, sub, tier, profile.Status(sub.Status))

	// Renewals carry no referral code; attribution applies only to the
	// initial checkout.
	r.recordRevenue(ctx, log, revenueParams{
		userID:      prof.ID,
		email:       prof.Email,
		paymentID:   firstNonEmpty(inv.PaymentIntent, inv.ID),
		tier:        tier,
		amountCents: inv.AmountPaid,
	})
	return nil
}

func (r *Reconciler) handleInvoicePaymentFailed(ctx context.Context, log *slog.Logger, inv invoicePayload) error {
	if inv.Customer == "" {
		return ErrMissingCustomerRef
	}
	prof, err := r.profiles.ByCustomerID(ctx, inv.Customer)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("no profile for customer, skipping payment failure", "customer_id", inv.Customer)
			return nil
		}
		return fmt.Errorf("look up profile for customer %s: %w", inv.Customer, err)
	}

	update := profile.Update{Status: profile.Ptr(profile.StatusPastDue)}
	if err := r.profiles.UpdateByEmail(ctx, prof.Email, update); err != nil {
		return fmt.Errorf("mark profile past due for %s: %w", prof.Email, err)
	}
	log.Info("payment failed, profile marked past due", "email", prof.Email)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
