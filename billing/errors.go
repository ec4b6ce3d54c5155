package billing

import "errors"

var (
	ErrInvalidSignature   = errors.New("webhook signature verification failed")
	ErrMissingSecretKey   = errors.New("payment platform secret key is not configured")
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrCustomerNotLinked  = errors.New("profile has no payment platform customer")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrMalformedEvent     = errors.New("malformed event payload")
	ErrMissingCustomerRef = errors.New("event has no customer reference")
)
