// Package profileapi exposes the signed-in user's account profile.
package profileapi
