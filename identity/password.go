package identity

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GeneratePassword returns a random credential for accounts provisioned
// from payment events. The user never sees it; they sign in via magic link
// and may reset it later. Two independent random segments joined with
// punctuation keep it comfortably above 24 characters.
func GeneratePassword() (string, error) {
	a, err := randomSegment(12)
	if err != nil {
		return "", err
	}
	b, err := randomSegment(12)
	if err != nil {
		return "", err
	}
	return a + "!" + b, nil
}

func randomSegment(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
