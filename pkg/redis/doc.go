// Package redis provides connection bootstrap and health checking for the
// Redis instance that backs anonymous guest-session usage counters.
package redis
