// Package usage enforces per-plan monthly quotas on report generation.
// Signed-in users are counted in postgres, anonymous visitors in redis.
// The gate fails open when a counter backend is unavailable.
package usage
