// Package webhookapi exposes the payment platform webhook endpoint.
// It verifies delivery signatures and hands events to the billing
// reconciler, acknowledging every verified delivery regardless of
// downstream outcome.
package webhookapi
