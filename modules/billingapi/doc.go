// Package billingapi exposes checkout session creation, the customer
// self-service portal, and checkout session email lookup.
package billingapi
