package billingapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/supplementsafetybible/backend/billing"
	"github.com/supplementsafetybible/backend/identity"
	"github.com/supplementsafetybible/backend/modules/web"
	"github.com/supplementsafetybible/backend/profile"
)

// Config holds the frontend URLs checkout and portal sessions return to.
type Config struct {
	SiteURL string `env:"SITE_URL" envDefault:"https://supplementsafetybible.com"`
}

func (c Config) successURL() string {
	return strings.TrimRight(c.SiteURL, "/") + "/success?session_id={CHECKOUT_SESSION_ID}"
}

func (c Config) cancelURL() string {
	return strings.TrimRight(c.SiteURL, "/") + "/pricing"
}

func (c Config) portalReturnURL() string {
	return strings.TrimRight(c.SiteURL, "/") + "/account"
}

// MagicLinkIssuer creates sign-in links for the post-payment exchange.
// Implemented by identity.PGDirectory.
type MagicLinkIssuer interface {
	GenerateMagicLink(ctx context.Context, email string) (string, error)
}

// Service exposes checkout, customer portal, and pricing endpoints.
type Service struct {
	provider  billing.Provider
	profiles  profile.Store
	verifier  web.TokenVerifier
	links     MagicLinkIssuer
	prices    billing.PriceConfig
	stripeCfg billing.StripeConfig
	cfg       Config
	log       *slog.Logger
}

// NewService wires the billing endpoints. links may be nil; session-email
// responses then omit the sign-in link.
func NewService(
	provider billing.Provider,
	profiles profile.Store,
	verifier web.TokenVerifier,
	links MagicLinkIssuer,
	prices billing.PriceConfig,
	stripeCfg billing.StripeConfig,
	cfg Config,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider:  provider,
		profiles:  profiles,
		verifier:  verifier,
		links:     links,
		prices:    prices,
		stripeCfg: stripeCfg,
		cfg:       cfg,
		log:       log.With("component", "billingapi"),
	}
}

// Handle returns the module's HTTP handler.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(web.MethodNotAllowed)
	r.Post("/checkout-session", s.createCheckoutSession)
	r.Post("/portal-session", s.createPortalSession)
	r.Get("/session-email", s.sessionEmail)
	r.Get("/prices", s.listPrices)
	return r
}

// checkoutMissing lists the configuration the checkout endpoint needs.
func (s *Service) checkoutMissing() []string {
	missing := s.prices.Missing()
	if s.stripeCfg.SecretKey == "" {
		missing = append([]string{"STRIPE_SECRET_KEY"}, missing...)
	}
	return missing
}

func (s *Service) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if missing := s.checkoutMissing(); len(missing) > 0 {
		web.MissingEnv(w, missing)
		return
	}

	var req struct {
		Plan              string `json:"plan"`
		UserID            string `json:"userId"`
		ReferralCode      string `json:"referralCode"`
		GuestSessionToken string `json:"guestSessionToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	priceID, plan, err := s.prices.PriceFor(req.Plan)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "unknown plan")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	prof, err := s.profiles.ByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			web.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		s.log.Error("failed to load profile", "error", err, "user_id", userID)
		web.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	customerID := prof.CustomerID
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(r.Context(), prof.Email, map[string]string{
			"user_id": prof.ID.String(),
		})
		if err != nil {
			s.log.Error("failed to create customer", "error", err, "user_id", userID)
			web.Error(w, http.StatusInternalServerError, "failed to create customer")
			return
		}
		if err := s.profiles.SetCustomerID(r.Context(), prof.ID, customerID); err != nil {
			s.log.Error("failed to link customer to profile", "error", err, "user_id", userID)
		}
	}

	metadata := map[string]string{
		"user_id": prof.ID.String(),
		"plan":    string(plan),
	}
	if req.ReferralCode != "" {
		metadata["referral_code"] = req.ReferralCode
	}
	if req.GuestSessionToken != "" {
		metadata["guest_session_token"] = req.GuestSessionToken
	}

	sess, err := s.provider.CreateCheckoutSession(r.Context(), billing.CheckoutSessionParams{
		CustomerID:      customerID,
		PriceID:         priceID,
		SuccessURL:      s.cfg.successURL(),
		CancelURL:       s.cfg.cancelURL(),
		Metadata:        metadata,
		ClientReference: req.ReferralCode,
	})
	if err != nil {
		s.log.Error("failed to create checkout session", "error", err, "user_id", userID)
		web.Error(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	web.JSON(w, http.StatusOK, map[string]string{
		"url":       sess.URL,
		"sessionId": sess.ID,
	})
}

// createPortalSession opens the customer self-service portal. The customer
// is resolved from an explicit id in the body or from the bearer token's
// profile.
func (s *Service) createPortalSession(w http.ResponseWriter, r *http.Request) {
	if s.stripeCfg.SecretKey == "" {
		web.MissingEnv(w, []string{"STRIPE_SECRET_KEY"})
		return
	}

	var req struct {
		CustomerID string `json:"customerId"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	customerID := req.CustomerID
	if customerID == "" {
		claims, ok := web.Authenticate(r, s.verifier)
		if !ok {
			web.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		prof, err := s.profiles.ByEmail(r.Context(), claims.Email)
		if err != nil || prof.CustomerID == "" {
			web.Error(w, http.StatusBadRequest, "no billing account for this user")
			return
		}
		customerID = prof.CustomerID
	}

	url, err := s.provider.CreateBillingPortalSession(r.Context(), customerID, s.cfg.portalReturnURL())
	if err != nil {
		s.log.Error("failed to create portal session", "error", err, "customer_id", customerID)
		web.Error(w, http.StatusInternalServerError, "failed to create portal session")
		return
	}

	web.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// sessionEmail exchanges a completed checkout session for the paying
// email and, when the account exists, a sign-in link. The post-payment
// page uses it to sign the customer straight in.
func (s *Service) sessionEmail(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		web.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	sess, err := s.provider.CheckoutSession(r.Context(), sessionID)
	if err != nil {
		web.Error(w, http.StatusNotFound, "checkout session not found")
		return
	}

	resp := map[string]string{"email": sess.CustomerEmail}
	if s.links != nil && sess.CustomerEmail != "" {
		// The account may not exist yet if the webhook is still in
		// flight; the page falls back to requesting a link later.
		link, err := s.links.GenerateMagicLink(r.Context(), sess.CustomerEmail)
		if err == nil {
			resp["magicLink"] = link
		} else if !errors.Is(err, identity.ErrUserNotFound) {
			s.log.Warn("failed to generate sign-in link for checkout session",
				"error", err, "session_id", sessionID)
		}
	}

	web.JSON(w, http.StatusOK, resp)
}

// listPrices returns the live recurring prices for the pricing grid.
func (s *Service) listPrices(w http.ResponseWriter, r *http.Request) {
	if s.stripeCfg.SecretKey == "" {
		web.MissingEnv(w, []string{"STRIPE_SECRET_KEY"})
		return
	}

	prices, err := s.provider.Prices(r.Context())
	if err != nil {
		s.log.Error("failed to list prices", "error", err)
		web.Error(w, http.StatusInternalServerError, "failed to list prices")
		return
	}

	type priceResponse struct {
		ID              string `json:"id"`
		ProductName     string `json:"product_name"`
		Currency        string `json:"currency"`
		UnitAmountCents int64  `json:"unit_amount_cents"`
		Interval        string `json:"interval"`
		Plan            string `json:"plan"`
	}
	out := make([]priceResponse, 0, len(prices))
	for _, p := range prices {
		out = append(out, priceResponse{
			ID:              p.ID,
			ProductName:     p.ProductName,
			Currency:        p.Currency,
			UnitAmountCents: p.UnitAmountCents,
			Interval:        p.Interval,
			Plan:            string(p.Plan),
		})
	}
	web.JSON(w, http.StatusOK, map[string]any{"prices": out})
}
