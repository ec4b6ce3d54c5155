package profileapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/supplementsafetybible/backend/modules/web"
	"github.com/supplementsafetybible/backend/profile"
)

// Service exposes the signed-in user's profile.
type Service struct {
	profiles profile.Store
	verifier web.TokenVerifier
	log      *slog.Logger
}

// NewService wires the profile endpoint.
func NewService(profiles profile.Store, verifier web.TokenVerifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		profiles: profiles,
		verifier: verifier,
		log:      log.With("component", "profileapi"),
	}
}

// Handle returns the module's HTTP handler.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(web.MethodNotAllowed)
	r.Use(web.RequireAuth(s.verifier))
	r.Get("/", s.getProfile)
	return r
}

type profileResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Plan               string     `json:"plan"`
	SubscriptionStatus string     `json:"subscription_status"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	ChecksRemaining    int        `json:"checks_remaining"`
	Role               string     `json:"role"`
}

// getProfile returns the caller's profile, creating a default starter row
// on first access so a fresh signup always sees a profile.
func (s *Service) getProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := web.ClaimsFromContext(r.Context())

	prof, err := s.profiles.ByEmail(r.Context(), claims.Email)
	if errors.Is(err, profile.ErrProfileNotFound) {
		prof, err = s.profiles.CreateDefault(r.Context(), claims.Email)
	}
	if err != nil {
		s.log.Error("failed to load profile", "error", err, "email", claims.Email)
		web.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	role := prof.Role
	if role == "" {
		role = profile.RoleUser
	}
	web.JSON(w, http.StatusOK, profileResponse{
		ID:                 prof.ID.String(),
		Email:              prof.Email,
		Plan:               string(prof.Plan),
		SubscriptionStatus: string(prof.Status),
		CurrentPeriodEnd:   prof.CurrentPeriodEnd,
		ChecksRemaining:    prof.EffectiveChecksRemaining(),
		Role:               string(role),
	})
}
