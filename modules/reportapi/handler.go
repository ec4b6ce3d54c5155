package reportapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/supplementsafetybible/backend/modules/web"
	"github.com/supplementsafetybible/backend/pkg/pdf"
	"github.com/supplementsafetybible/backend/profile"
	"github.com/supplementsafetybible/backend/usage"
)

// Service generates interaction safety reports, guarded by the per-plan
// monthly quota. Signed-in users are counted against their profile's
// plan; anonymous visitors are counted per guest session token on the
// starter quota.
type Service struct {
	profiles  profile.Store
	verifier  web.TokenVerifier
	userGate  *usage.Gate
	guestGate *usage.Gate
	generator *pdf.Generator
	log       *slog.Logger
}

// NewService wires the report endpoint.
func NewService(
	profiles profile.Store,
	verifier web.TokenVerifier,
	userGate *usage.Gate,
	guestGate *usage.Gate,
	generator *pdf.Generator,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		profiles:  profiles,
		verifier:  verifier,
		userGate:  userGate,
		guestGate: guestGate,
		generator: generator,
		log:       log.With("component", "reportapi"),
	}
}

// Handle returns the module's HTTP handler.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(web.MethodNotAllowed)
	r.Post("/", s.generateReport)
	return r
}

type reportRequest struct {
	// Pointers distinguish an absent field from an empty list; both lists
	// must be present even when empty.
	Medications       *[]string `json:"medications"`
	Supplements       *[]string `json:"supplements"`
	GuestSessionToken string    `json:"guestSessionToken"`
}

func (s *Service) generateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Medications == nil || req.Supplements == nil {
		web.Error(w, http.StatusBadRequest, "medications and supplements are required")
		return
	}

	var (
		identifier string
		plan       profile.Plan
		gate       *usage.Gate
	)
	if claims, ok := web.Authenticate(r, s.verifier); ok {
		prof, err := s.profiles.ByEmail(r.Context(), claims.Email)
		if errors.Is(err, profile.ErrProfileNotFound) {
			prof, err = s.profiles.CreateDefault(r.Context(), claims.Email)
		}
		if err != nil {
			s.log.Error("failed to load profile", "error", err, "email", claims.Email)
			web.Error(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		identifier = prof.Email
		plan = prof.Plan
		gate = s.userGate
	} else if req.GuestSessionToken != "" {
		identifier = req.GuestSessionToken
		plan = profile.PlanStarter
		gate = s.guestGate
	} else {
		web.Error(w, http.StatusUnauthorized, "authentication or guest session required")
		return
	}

	decision := gate.Check(r.Context(), identifier, plan)
	if !decision.Allowed {
		web.JSON(w, http.StatusTooManyRequests, map[string]any{
			"error": "monthly report limit reached",
			"used":  decision.Used,
			"limit": decision.Limit,
			"plan":  string(plan),
		})
		return
	}

	doc, err := s.generator.Generate(pdf.Report{
		Medications: *req.Medications,
		Supplements: *req.Supplements,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		s.log.Error("failed to generate report", "error", err)
		web.Error(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	if plan.MonthlyReportLimit() != profile.Unlimited {
		gate.RecordUsage(r.Context(), identifier)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="supplement-safety-report.pdf"`)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
