package billing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/supplementsafetybible/backend/billing"
	"github.com/supplementsafetybible/backend/identity"
	"github.com/supplementsafetybible/backend/profile"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) VerifyWebhook(payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(payload, signature)
	if e, ok := args.Get(0).(*billing.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) Subscription(ctx context.Context, id string) (*billing.SubscriptionInfo, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*billing.SubscriptionInfo); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CheckoutSession(ctx context.Context, id string) (*billing.CheckoutSessionInfo, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*billing.CheckoutSessionInfo); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, params billing.CheckoutSessionParams) (*billing.CheckoutSessionInfo, error) {
	args := m.Called(ctx, params)
	if s, ok := args.Get(0).(*billing.CheckoutSessionInfo); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, email, metadata)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Prices(ctx context.Context) ([]billing.Price, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).([]billing.Price); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type memDirectory struct {
	mu      sync.Mutex
	users   map[string]*identity.User
	created int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{users: map[string]*identity.User{}}
}

func (d *memDirectory) UserByEmail(_ context.Context, email string) (*identity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (d *memDirectory) CreateUser(_ context.Context, params identity.CreateUserParams) (*identity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := strings.ToLower(params.Email)
	if _, ok := d.users[key]; ok {
		return nil, identity.ErrUserAlreadyExists
	}
	u := &identity.User{
		ID:             uuid.New(),
		Email:          key,
		EmailConfirmed: params.EmailConfirmed,
		Metadata:       params.Metadata,
		CreatedAt:      time.Now(),
	}
	d.users[key] = u
	d.created++
	return u, nil
}

func (d *memDirectory) GenerateMagicLink(context.Context, string) (string, error) {
	return "", nil
}

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]*profile.Profile
}

func newMemProfiles(seed ...*profile.Profile) *memProfiles {
	s := &memProfiles{rows: map[string]*profile.Profile{}}
	for _, p := range seed {
		s.rows[strings.ToLower(p.Email)] = p
	}
	return s
}

func (s *memProfiles) ByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.rows {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, profile.ErrProfileNotFound
}

func (s *memProfiles) ByEmail(_ context.Context, email string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.rows[strings.ToLower(email)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, profile.ErrProfileNotFound
}

func (s *memProfiles) ByCustomerID(_ context.Context, customerID string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.rows {
		if p.CustomerID == customerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, profile.ErrProfileNotFound
}

func (s *memProfiles) CreateDefault(_ context.Context, email string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if p, ok := s.rows[key]; ok {
		cp := *p
		return &cp, nil
	}
	p := &profile.Profile{ID: uuid.New(), Email: key, Plan: profile.PlanStarter, Status: profile.StatusNone}
	s.rows[key] = p
	cp := *p
	return &cp, nil
}

func (s *memProfiles) UpdateByEmail(_ context.Context, email string, update profile.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[strings.ToLower(email)]
	if !ok {
		return profile.ErrProfileNotFound
	}
	if update.Plan != nil {
		p.Plan = *update.Plan
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.CurrentPeriodEnd != nil {
		p.CurrentPeriodEnd = update.CurrentPeriodEnd
	}
	if update.CustomerID != nil && *update.CustomerID != "" {
		p.CustomerID = *update.CustomerID
	}
	if update.SubscriptionID != nil {
		p.SubscriptionID = *update.SubscriptionID
	}
	if update.ChecksRemaining != nil {
		p.ChecksRemaining = update.ChecksRemaining
	}
	return nil
}

func (s *memProfiles) SetCustomerID(_ context.Context, id uuid.UUID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.rows {
		if p.ID == id {
			if p.CustomerID == "" {
				p.CustomerID = customerID
			}
			return nil
		}
	}
	return profile.ErrProfileNotFound
}

type memRevenue struct {
	mu      sync.Mutex
	records []billing.RevenueRecord
}

func (s *memRevenue) Insert(_ context.Context, record billing.RevenueRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

type referralRow struct {
	converted    bool
	convertedAt  time.Time
	tier         profile.Plan
	revenueCents int64
}

type memReferrals struct {
	mu   sync.Mutex
	rows map[string]*referralRow
}

func newMemReferrals(keys ...string) *memReferrals {
	s := &memReferrals{rows: map[string]*referralRow{}}
	for _, k := range keys {
		s.rows[k] = &referralRow{}
	}
	return s
}

func referralKey(code string, userID uuid.UUID) string {
	return code + "|" + userID.String()
}

func (s *memReferrals) MarkConverted(_ context.Context, code string, userID uuid.UUID, tier profile.Plan, revenueCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[referralKey(code, userID)]
	if !ok || row.converted {
		return nil
	}
	row.converted = true
	row.convertedAt = time.Now()
	row.tier = tier
	row.revenueCents = revenueCents
	return nil
}

type memGuests struct {
	mu        sync.Mutex
	converted map[string]string
}

func newMemGuests() *memGuests {
	return &memGuests{converted: map[string]string{}}
}

func (s *memGuests) MarkConverted(_ context.Context, token, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converted[token] = customerID
	return nil
}

type reconcilerFixture struct {
	provider  *mockProvider
	directory *memDirectory
	profiles  *memProfiles
	revenue   *memRevenue
	referrals *memReferrals
	guests    *memGuests
	rec       *billing.Reconciler
}

func newFixture(t *testing.T, seedProfiles []*profile.Profile, referralKeys ...string) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		provider:  &mockProvider{},
		directory: newMemDirectory(),
		profiles:  newMemProfiles(seedProfiles...),
		revenue:   &memRevenue{},
		referrals: newMemReferrals(referralKeys...),
		guests:    newMemGuests(),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.rec = billing.NewReconciler(f.provider, f.directory, f.profiles, f.revenue, f.referrals, f.guests, testPrices, log)
	return f
}

func checkoutEvent(t *testing.T, overrides map[string]any) *billing.Event {
	t.Helper()
	payload := map[string]any{
		"id":               "cs_1",
		"customer":         "cus_1",
		"subscription":     "sub_1",
		"payment_intent":   "pi_1",
		"mode":             "subscription",
		"amount_total":     1999,
		"customer_details": map[string]any{"email": "a@x.com"},
		"metadata":         map[string]any{},
	}
	for k, v := range overrides {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &billing.Event{ID: "evt_1", Type: "checkout.session.completed", Kind: billing.KindCheckoutCompleted, Raw: raw}
}

func TestHandleEvent_CheckoutCompleted(t *testing.T) {
	t.Parallel()

	periodEnd := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	proSub := &billing.SubscriptionInfo{
		ID:               "sub_1",
		Status:           "active",
		PriceID:          testPrices.ProMonthly,
		Interval:         "month",
		CurrentPeriodEnd: &periodEnd,
	}

	t.Run("provisions account, syncs profile, records revenue", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanStarter, Status: profile.StatusNone}
		f := newFixture(t, []*profile.Profile{seed}, referralKey("FRIEND5", seed.ID))
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(proSub, nil)

		event := checkoutEvent(t, map[string]any{
			"metadata": map[string]any{"referral_code": "FRIEND5", "guest_session_token": "guest-1"},
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		user, err := f.directory.UserByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.True(t, user.EmailConfirmed)
		assert.Equal(t, "stripe_payment", user.Metadata["created_via"])
		assert.Equal(t, "cus_1", user.Metadata["stripe_customer_id"])

		prof, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, profile.PlanPro, prof.Plan)
		assert.Equal(t, profile.StatusActive, prof.Status)
		assert.Equal(t, "cus_1", prof.CustomerID)
		assert.Equal(t, "sub_1", prof.SubscriptionID)
		require.NotNil(t, prof.CurrentPeriodEnd)
		assert.Equal(t, periodEnd, *prof.CurrentPeriodEnd)

		require.Len(t, f.revenue.records, 1)
		record := f.revenue.records[0]
		assert.Equal(t, seed.ID, record.UserID)
		assert.Equal(t, "pi_1", record.PaymentID)
		assert.Equal(t, profile.PlanPro, record.Tier)
		assert.Equal(t, int64(1999), record.AmountCents)
		assert.Equal(t, billing.ProcessorFee(1999), record.FeeCents)
		assert.Equal(t, "FRIEND5", record.ReferralCode)
		assert.False(t, record.Reinvested)

		assert.True(t, f.referrals.rows[referralKey("FRIEND5", seed.ID)].converted)
		assert.Equal(t, "cus_1", f.guests.converted["guest-1"])
	})

	t.Run("replay converges on the same profile state", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanStarter, Status: profile.StatusNone}
		f := newFixture(t, []*profile.Profile{seed}, referralKey("FRIEND5", seed.ID))
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(proSub, nil)

		event := checkoutEvent(t, map[string]any{
			"metadata": map[string]any{"referral_code": "FRIEND5"},
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		after1, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		firstConversion := f.referrals.rows[referralKey("FRIEND5", seed.ID)].convertedAt

		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		after2, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, after1, after2, "profile state must converge under replay")
		assert.Equal(t, 1, f.directory.created, "identity must not be recreated")
		assert.Equal(t, firstConversion, f.referrals.rows[referralKey("FRIEND5", seed.ID)].convertedAt,
			"referral conversion must be monotonic")

		// The ledger insert is intentionally not deduplicated by payment id.
		assert.Len(t, f.revenue.records, 2)
	})

	t.Run("existing identity is not recreated", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com"}
		f := newFixture(t, []*profile.Profile{seed})
		_, err := f.directory.CreateUser(context.Background(), identity.CreateUserParams{Email: "a@x.com", Password: "pw"})
		require.NoError(t, err)
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(proSub, nil)

		require.NoError(t, f.rec.HandleEvent(context.Background(), checkoutEvent(t, nil)))
		assert.Equal(t, 1, f.directory.created)
	})

	t.Run("session without subscription is acknowledged and skipped", func(t *testing.T) {
		f := newFixture(t, nil)

		event := checkoutEvent(t, map[string]any{"subscription": ""})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		assert.Empty(t, f.revenue.records)
		f.provider.AssertNotCalled(t, "Subscription", mock.Anything, mock.Anything)
	})

	t.Run("missing profile skips revenue but still provisions", func(t *testing.T) {
		f := newFixture(t, nil)
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(proSub, nil)

		require.NoError(t, f.rec.HandleEvent(context.Background(), checkoutEvent(t, nil)))

		_, err := f.directory.UserByEmail(context.Background(), "a@x.com")
		assert.NoError(t, err, "account is provisioned even without a profile row")
		assert.Empty(t, f.revenue.records)
	})

	t.Run("provider status is mirrored, not assumed active", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanStarter, Status: profile.StatusNone}
		f := newFixture(t, []*profile.Profile{seed})
		trialSub := &billing.SubscriptionInfo{
			ID:      "sub_1",
			Status:  "trialing",
			PriceID: testPrices.ProMonthly,
		}
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(trialSub, nil)

		require.NoError(t, f.rec.HandleEvent(context.Background(), checkoutEvent(t, nil)))

		prof, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, profile.StatusTrialing, prof.Status)
		assert.Equal(t, profile.PlanPro, prof.Plan)
	})

	t.Run("missing email is acknowledged without side effects", func(t *testing.T) {
		f := newFixture(t, nil)
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(proSub, nil)

		event := checkoutEvent(t, map[string]any{"customer_details": map[string]any{"email": ""}})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		assert.Equal(t, 0, f.directory.created)
		assert.Empty(t, f.revenue.records)
	})

	t.Run("provider failure surfaces as an error", func(t *testing.T) {
		f := newFixture(t, nil)
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(nil, fmt.Errorf("provider down"))

		err := f.rec.HandleEvent(context.Background(), checkoutEvent(t, nil))
		assert.Error(t, err)
	})
}

func subscriptionEvent(t *testing.T, kind billing.EventKind, payload map[string]any) *billing.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	eventType := "customer.subscription.updated"
	if kind == billing.KindSubscriptionDeleted {
		eventType = "customer.subscription.deleted"
	}
	return &billing.Event{ID: "evt_2", Type: eventType, Kind: kind, Raw: raw}
}

func TestHandleEvent_SubscriptionLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("update mirrors status and tier", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanPro, Status: profile.StatusActive, CustomerID: "cus_1"}
		f := newFixture(t, []*profile.Profile{seed})

		event := subscriptionEvent(t, billing.KindSubscriptionUpdated, map[string]any{
			"id":       "sub_1",
			"customer": "cus_1",
			"status":   "past_due",
			"items": map[string]any{"data": []map[string]any{{
				"current_period_end": 1764547200,
				"price":              map[string]any{"id": testPrices.PremiumMonthly},
			}}},
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		prof, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, profile.PlanPremium, prof.Plan)
		assert.Equal(t, profile.StatusPastDue, prof.Status)
		require.NotNil(t, prof.CurrentPeriodEnd)
		assert.Equal(t, time.Unix(1764547200, 0).UTC(), *prof.CurrentPeriodEnd)
	})

	t.Run("deletion downgrades to starter", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanPremium, Status: profile.StatusActive, CustomerID: "cus_1"}
		f := newFixture(t, []*profile.Profile{seed})

		event := subscriptionEvent(t, billing.KindSubscriptionDeleted, map[string]any{
			"id":       "sub_1",
			"customer": "cus_1",
			"status":   "canceled",
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		prof, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, profile.PlanStarter, prof.Plan)
		assert.Equal(t, profile.StatusCanceled, prof.Status)
		assert.Equal(t, "cus_1", prof.CustomerID, "customer link survives cancellation")
	})

	t.Run("unknown customer is acknowledged and skipped", func(t *testing.T) {
		f := newFixture(t, nil)

		event := subscriptionEvent(t, billing.KindSubscriptionUpdated, map[string]any{
			"id":       "sub_1",
			"customer": "cus_missing",
			"status":   "active",
		})
		assert.NoError(t, f.rec.HandleEvent(context.Background(), event))
	})

	t.Run("missing customer reference is an error", func(t *testing.T) {
		f := newFixture(t, nil)

		event := subscriptionEvent(t, billing.KindSubscriptionUpdated, map[string]any{"id": "sub_1"})
		assert.ErrorIs(t, f.rec.HandleEvent(context.Background(), event), billing.ErrMissingCustomerRef)
	})
}

func invoiceEvent(t *testing.T, kind billing.EventKind, payload map[string]any) *billing.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &billing.Event{ID: "evt_3", Type: "invoice.paid", Kind: kind, Raw: raw}
}

func TestHandleEvent_Invoices(t *testing.T) {
	t.Parallel()

	t.Run("renewal records revenue without referral", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanPro, Status: profile.StatusActive, CustomerID: "cus_1"}
		f := newFixture(t, []*profile.Profile{seed})
		f.provider.On("Subscription", mock.Anything, "sub_1").Return(&billing.SubscriptionInfo{
			ID: "sub_1", Status: "active", PriceID: testPrices.ProMonthly,
		}, nil)

		event := invoiceEvent(t, billing.KindInvoicePaid, map[string]any{
			"id":             "in_1",
			"customer":       "cus_1",
			"amount_paid":    1999,
			"billing_reason": "subscription_cycle",
			"payment_intent": "pi_renewal",
			"subscription":   "sub_1",
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		require.Len(t, f.revenue.records, 1)
		record := f.revenue.records[0]
		assert.Equal(t, seed.ID, record.UserID)
		assert.Equal(t, "pi_renewal", record.PaymentID)
		assert.Empty(t, record.ReferralCode)
	})

	t.Run("subscription id is read from the parent location too", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", CustomerID: "cus_1"}
		f := newFixture(t, []*profile.Profile{seed})
		f.provider.On("Subscription", mock.Anything, "sub_9").Return(&billing.SubscriptionInfo{
			ID: "sub_9", Status: "active", PriceID: testPrices.ProMonthly,
		}, nil)

		event := invoiceEvent(t, billing.KindInvoicePaid, map[string]any{
			"id":             "in_2",
			"customer":       "cus_1",
			"amount_paid":    1999,
			"billing_reason": "subscription_cycle",
			"parent": map[string]any{
				"subscription_details": map[string]any{"subscription": "sub_9"},
			},
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))
		require.Len(t, f.revenue.records, 1)
	})

	t.Run("non-renewal invoices are ignored", func(t *testing.T) {
		f := newFixture(t, nil)

		event := invoiceEvent(t, billing.KindInvoicePaid, map[string]any{
			"id":             "in_3",
			"customer":       "cus_1",
			"amount_paid":    500,
			"billing_reason": "manual",
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))
		assert.Empty(t, f.revenue.records)
		f.provider.AssertNotCalled(t, "Subscription", mock.Anything, mock.Anything)
	})

	t.Run("payment failure marks the profile past due", func(t *testing.T) {
		seed := &profile.Profile{ID: uuid.New(), Email: "a@x.com", Plan: profile.PlanPro, Status: profile.StatusActive, CustomerID: "cus_1"}
		f := newFixture(t, []*profile.Profile{seed})

		event := invoiceEvent(t, billing.KindInvoicePaymentFailed, map[string]any{
			"id":       "in_4",
			"customer": "cus_1",
		})
		require.NoError(t, f.rec.HandleEvent(context.Background(), event))

		prof, err := f.profiles.ByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, profile.StatusPastDue, prof.Status)
		assert.Equal(t, profile.PlanPro, prof.Plan, "failure does not downgrade the plan")
	})
}

func TestHandleEvent_UnhandledAndMalformed(t *testing.T) {
	t.Parallel()

	t.Run("unhandled kinds are acknowledged", func(t *testing.T) {
		f := newFixture(t, nil)
		event := &billing.Event{ID: "evt_4", Type: "charge.refunded", Kind: billing.KindUnhandled, Raw: json.RawMessage(`{}`)}
		assert.NoError(t, f.rec.HandleEvent(context.Background(), event))
	})

	t.Run("malformed payloads are errors", func(t *testing.T) {
		f := newFixture(t, nil)
		event := &billing.Event{ID: "evt_5", Type: "checkout.session.completed", Kind: billing.KindCheckoutCompleted, Raw: json.RawMessage(`{`)}
		assert.ErrorIs(t, f.rec.HandleEvent(context.Background(), event), billing.ErrMalformedEvent)
	})
}
