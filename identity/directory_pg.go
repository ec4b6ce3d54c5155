package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/supplementsafetybible/backend/pkg/pg"
)

// PGDirectory is the postgres-backed Directory implementation.
type PGDirectory struct {
	db     *pgxpool.Pool
	tokens *TokenService
	cfg    Config
}

// NewPGDirectory creates a directory on the given pool. The token service
// signs the magic-link tokens embedded in generated links.
func NewPGDirectory(db *pgxpool.Pool, tokens *TokenService, cfg Config) *PGDirectory {
	return &PGDirectory{db: db, tokens: tokens, cfg: cfg}
}

var _ Directory = (*PGDirectory)(nil)

func (d *PGDirectory) UserByEmail(ctx context.Context, email string) (*User, error) {
	var (
		u        User
		metadata []byte
	)
	err := d.db.QueryRow(ctx, `
		SELECT id, email, email_confirmed, metadata, created_at
		FROM users WHERE lower(email) = lower($1)`, email).
		Scan(&u.ID, &u.Email, &u.EmailConfirmed, &metadata, &u.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &u.Metadata); err != nil {
			return nil, fmt.Errorf("decode user metadata: %w", err)
		}
	}
	return &u, nil
}

func (d *PGDirectory) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	if strings.TrimSpace(params.Email) == "" {
		return nil, ErrMissingEmail
	}
	if params.Password == "" {
		return nil, ErrMissingPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	metadata := []byte("{}")
	if len(params.Metadata) > 0 {
		metadata, err = json.Marshal(params.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode user metadata: %w", err)
		}
	}

	u := User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(params.Email)),
		EmailConfirmed: params.EmailConfirmed,
		Metadata:       params.Metadata,
	}
	err = d.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, email_confirmed, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		u.ID, u.Email, string(hash), u.EmailConfirmed, metadata).
		Scan(&u.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (d *PGDirectory) GenerateMagicLink(ctx context.Context, email string) (string, error) {
	user, err := d.UserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token, err := d.tokens.IssueMagicLinkToken(user)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/auth/confirm?token=%s",
		strings.TrimRight(d.cfg.SiteURL, "/"), url.QueryEscape(token)), nil
}
