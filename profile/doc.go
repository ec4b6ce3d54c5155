// Package profile holds the per-user account record and its persistence.
// A profile mirrors the user's subscription state (plan, status, billing
// period) as reconciled from payment-platform events, and carries the
// usage counter consumed by the report quota.
package profile
