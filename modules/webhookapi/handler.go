package webhookapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/supplementsafetybible/backend/billing"
	"github.com/supplementsafetybible/backend/modules/web"
)

const maxBodyBytes = 1 << 20 // payment platform deliveries are small

// Verifier checks webhook delivery signatures. Implemented by
// billing.StripeProvider.
type Verifier interface {
	VerifyWebhook(payload []byte, signature string) (*billing.Event, error)
	WebhookConfigured() bool
}

// EventHandler applies a verified event. Implemented by billing.Reconciler.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *billing.Event) error
}

// Service receives payment platform webhook deliveries.
type Service struct {
	verifier Verifier
	handler  EventHandler
	log      *slog.Logger
}

// NewService wires the webhook endpoint.
func NewService(verifier Verifier, handler EventHandler, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		verifier: verifier,
		handler:  handler,
		log:      log.With("component", "webhookapi"),
	}
}

// Handle returns the module's HTTP handler, mounted at the webhook path.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(web.MethodNotAllowed)
	r.Post("/", s.receive)
	return r
}

// receive verifies and dispatches one delivery. After the signature
// passes, the response is always 200: the platform retries non-2xx
// responses indefinitely and replayed side effects are worse than a
// dropped delivery, since state converges from later events.
func (s *Service) receive(w http.ResponseWriter, r *http.Request) {
	if !s.verifier.WebhookConfigured() {
		s.log.Error("webhook secret not configured, refusing delivery")
		web.Error(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := s.verifier.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		s.log.Warn("webhook signature verification failed", "error", err)
		web.Error(w, http.StatusBadRequest, "invalid signature")
		return
	}

	if err := s.handler.HandleEvent(r.Context(), event); err != nil {
		s.log.Error("webhook processing failed",
			"error", err, "event_id", event.ID, "event_type", event.Type)
	}

	web.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
