package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"garage-client-api/internal/logger"
)

const tokenCachePrefix = "auth_token:"

// InitializeTokenCache sets up Redis for token caching and tests the
// connection.
func InitializeTokenCache(redisAddr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		if log != nil {
			log.Error("AUTH", "Failed to connect to Redis for token caching: "+err.Error())
		}
		return nil, err
	}

	if log != nil {
		log.Info("AUTH", "Redis token cache connected at "+redisAddr)
	}
	return client, nil
}

// CachedClaims is the subset of token claims worth keeping between requests.
type CachedClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
}

// TokenCache caches verified token claims so repeated requests with the same
// bearer token skip the OIDC round trip.
type TokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenCache(client *redis.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenCache{client: client, ttl: ttl}
}

// Get returns the cached claims for a token, or false on a miss.
func (tc *TokenCache) Get(ctx context.Context, token string) (CachedClaims, bool) {
	raw, err := tc.client.Get(ctx, tokenCachePrefix+hashToken(token)).Result()
	if err != nil {
		return CachedClaims{}, false
	}
	var claims CachedClaims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return CachedClaims{}, false
	}
	return claims, true
}

// Set stores the verified claims for a token.
func (tc *TokenCache) Set(ctx context.Context, token string, claims CachedClaims) error {
	raw, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return tc.client.Set(ctx, tokenCachePrefix+hashToken(token), raw, tc.ttl).Err()
}

// Tokens are hashed before use as cache keys so raw credentials never land
// in Redis.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
