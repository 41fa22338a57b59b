package ports

import "context"

// KeyClaimer hands out short-lived exclusive claims on a key, used to keep two
// concurrent requests from registering the same email or SKU.
type KeyClaimer interface {
	// Claim reports ok when the caller now holds key. token identifies this
	// hold and must be passed back to Release.
	Claim(ctx context.Context, key string) (token string, ok bool, err error)
	// Release drops the claim only while token still holds it, so a holder
	// whose claim expired cannot free a later holder's claim.
	Release(ctx context.Context, key, token string) error
}
