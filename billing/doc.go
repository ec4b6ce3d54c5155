// Package billing integrates the payment platform: webhook event
// verification and dispatch, tier resolution from price ids, the revenue
// and referral ledgers, and checkout/portal session creation.
//
// The reconciler in this package is the single writer of subscription
// state. Webhook deliveries are at-least-once, so every handler is
// keyed-upsert based and safe to replay.
package billing
