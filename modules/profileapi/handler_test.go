package profileapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplementsafetybible/backend/identity"
	"github.com/supplementsafetybible/backend/modules/profileapi"
	"github.com/supplementsafetybible/backend/profile"
)

type fakeProfiles struct {
	rows    map[string]*profile.Profile
	created int
}

func newFakeProfiles(profiles ...*profile.Profile) *fakeProfiles {
	s := &fakeProfiles{rows: map[string]*profile.Profile{}}
	for _, p := range profiles {
		s.rows[strings.ToLower(p.Email)] = p
	}
	return s
}

func (s *fakeProfiles) ByID(context.Context, uuid.UUID) (*profile.Profile, error) {
	return nil, profile.ErrProfileNotFound
}

func (s *fakeProfiles) ByEmail(_ context.Context, email string) (*profile.Profile, error) {
	if p, ok := s.rows[strings.ToLower(email)]; ok {
		return p, nil
	}
	return nil, profile.ErrProfileNotFound
}

func (s *fakeProfiles) ByCustomerID(context.Context, string) (*profile.Profile, error) {
	return nil, profile.ErrProfileNotFound
}

func (s *fakeProfiles) CreateDefault(_ context.Context, email string) (*profile.Profile, error) {
	s.created++
	p := &profile.Profile{ID: uuid.New(), Email: strings.ToLower(email), Plan: profile.PlanStarter, Status: profile.StatusNone}
	s.rows[p.Email] = p
	return p, nil
}

func (s *fakeProfiles) UpdateByEmail(context.Context, string, profile.Update) error {
	return errors.New("not implemented")
}

func (s *fakeProfiles) SetCustomerID(context.Context, uuid.UUID, string) error {
	return errors.New("not implemented")
}

func newProfileServer(t *testing.T, profiles *fakeProfiles) (http.Handler, *identity.TokenService) {
	t.Helper()
	tokens, err := identity.NewTokenService("test-secret-at-least-32-bytes-long")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return profileapi.NewService(profiles, tokens, log).Handle(), tokens
}

func authedRequest(t *testing.T, tokens *identity.TokenService, email string) *http.Request {
	t.Helper()
	token, err := tokens.IssueAccessToken(&identity.User{ID: uuid.New(), Email: email}, time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	t.Run("returns the existing profile", func(t *testing.T) {
		end := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
		profiles := newFakeProfiles(&profile.Profile{
			ID:               uuid.New(),
			Email:            "pro@x.com",
			Plan:             profile.PlanPro,
			Status:           profile.StatusActive,
			CurrentPeriodEnd: &end,
			Role:             profile.RoleUser,
		})
		h, tokens := newProfileServer(t, profiles)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authedRequest(t, tokens, "pro@x.com"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"plan":"pro"`)
		assert.Contains(t, rec.Body.String(), `"subscription_status":"active"`)
		assert.Contains(t, rec.Body.String(), `"checks_remaining":999999`)
		assert.Equal(t, 0, profiles.created)
	})

	t.Run("creates a default profile on first access", func(t *testing.T) {
		profiles := newFakeProfiles()
		h, tokens := newProfileServer(t, profiles)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authedRequest(t, tokens, "new@x.com"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"plan":"starter"`)
		assert.Contains(t, rec.Body.String(), `"checks_remaining":5`)
		assert.Equal(t, 1, profiles.created)
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		h, _ := newProfileServer(t, newFakeProfiles())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
