package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an identity-platform account. It is distinct from the profile
// record: the user authenticates, the profile carries subscription state.
type User struct {
	ID             uuid.UUID
	Email          string
	EmailConfirmed bool
	Metadata       map[string]string
	CreatedAt      time.Time
}

// CreateUserParams describes a new account. Email and Password are required.
type CreateUserParams struct {
	Email          string
	Password       string
	EmailConfirmed bool
	Metadata       map[string]string
}

// Directory manages identity-platform accounts. The webhook reconciler uses
// it to provision accounts for customers who paid before signing up.
type Directory interface {
	// UserByEmail looks up an account, returning ErrUserNotFound when absent.
	UserByEmail(ctx context.Context, email string) (*User, error)

	// CreateUser provisions a new account. Returns ErrUserAlreadyExists when
	// the email is taken.
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)

	// GenerateMagicLink issues a single-use sign-in link for the email.
	GenerateMagicLink(ctx context.Context, email string) (string, error)
}
