// Package identity manages user accounts and authentication tokens.
// It provisions accounts for customers whose payment arrived before signup
// and issues the magic links they use to sign in afterwards.
package identity
