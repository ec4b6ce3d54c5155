// Package authapi exposes passwordless sign-in via emailed magic links.
package authapi
