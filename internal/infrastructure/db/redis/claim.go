package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultClaimTTL = 10 * time.Second

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// KeyClaimer implements ports.KeyClaimer with SET NX. Each claim stores a
// random token and expires on its own after the TTL.
// Key format: claim:<key>
type KeyClaimer struct {
	client *redis.Client
	ttl    time.Duration
	token  func() string
}

// NewKeyClaimer creates a KeyClaimer wrapping the given Redis client.
// A non-positive ttl falls back to defaultClaimTTL.
func NewKeyClaimer(client *redis.Client, ttl time.Duration) *KeyClaimer {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &KeyClaimer{client: client, ttl: ttl, token: uuid.NewString}
}

// Claim reports whether this caller now holds key.
func (k *KeyClaimer) Claim(ctx context.Context, key string) (string, bool, error) {
	token := k.token()
	ok, err := k.client.SetNX(ctx, claimKey(key), token, k.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the claim if token still holds it. A claim that expired and
// was taken by another request is left alone.
func (k *KeyClaimer) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, k.client, []string{claimKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

func claimKey(key string) string {
	return "claim:" + key
}
