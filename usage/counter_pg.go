package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGCounter counts report generations for signed-in users from the
// pdf_logs table, keyed by email.
type PGCounter struct {
	db *pgxpool.Pool
}

func NewPGCounter(db *pgxpool.Pool) *PGCounter {
	return &PGCounter{db: db}
}

var _ Counter = (*PGCounter)(nil)

func (c *PGCounter) CountSince(ctx context.Context, email string, since time.Time) (int64, error) {
	var count int64
	err := c.db.QueryRow(ctx, `
		SELECT count(*) FROM pdf_logs
		WHERE lower(user_email) = lower($1) AND created_at >= $2`,
		email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pdf logs: %w", err)
	}
	return count, nil
}

func (c *PGCounter) Record(ctx context.Context, email string) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO pdf_logs (user_email) VALUES (lower($1))`, email)
	if err != nil {
		return fmt.Errorf("insert pdf log: %w", err)
	}
	return nil
}
