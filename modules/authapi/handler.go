package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/supplementsafetybible/backend/identity"
	"github.com/supplementsafetybible/backend/modules/web"
	"github.com/supplementsafetybible/backend/pkg/email"
)

// Service handles passwordless sign-in.
type Service struct {
	directory identity.Directory
	sender    email.EmailSender
	log       *slog.Logger
}

// NewService wires the auth endpoints.
func NewService(directory identity.Directory, sender email.EmailSender, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		directory: directory,
		sender:    sender,
		log:       log.With("component", "authapi"),
	}
}

// Handle returns the module's HTTP handler.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(web.MethodNotAllowed)
	r.Post("/magic-link", s.sendMagicLink)
	return r
}

// sendMagicLink emails a sign-in link. The response is 200 whether or not
// an account exists, so the endpoint cannot be used to enumerate emails.
func (s *Service) sendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	addr := strings.TrimSpace(strings.ToLower(req.Email))
	if addr == "" || !strings.Contains(addr, "@") {
		web.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	link, err := s.directory.GenerateMagicLink(r.Context(), addr)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) {
			s.log.Error("failed to generate magic link", "error", err, "email", addr)
		}
		web.JSON(w, http.StatusOK, map[string]bool{"sent": true})
		return
	}

	params := email.SendEmailParams{
		SendTo:   addr,
		Subject:  "Your sign-in link",
		BodyHTML: magicLinkBody(link),
		Tag:      "magic-link",
	}
	if err := s.sender.SendEmail(r.Context(), params); err != nil {
		s.log.Error("failed to send magic link email", "error", err, "email", addr)
	}

	web.JSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func magicLinkBody(link string) string {
	return fmt.Sprintf(`<p>Click the link below to sign in to Supplement Safety Bible.</p>
<p><a href="%s">Sign in</a></p>
<p>The link expires in 24 hours. If you did not request it, ignore this email.</p>`, link)
}
