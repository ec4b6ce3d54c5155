// Package pg bootstraps the PostgreSQL layer: pooled connectivity via
// pgx/v5 with startup retries, schema migrations via goose/v3, a health
// check closure, and error classification helpers used by the stores.
package pg
