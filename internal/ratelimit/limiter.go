// Package ratelimit caps contact-form submissions per source identity
// using a fixed-window counter in Redis.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentgrid/intake-service/pkg/logging"
)

var tracer = otel.Tracer("github.com/talentgrid/intake-service/internal/ratelimit")

const keyPrefix = "intake:ratelimit:"

// Config contains fixed-window limiter configuration.
type Config struct {
	Enabled bool
	// Max accepted submissions per identity within a window.
	Max int
	// Window length; the counter expires with the Redis key.
	Window time.Duration
}

// DefaultConfig returns the production limits for the contact form.
func DefaultConfig() Config {
	return Config{Enabled: true, Max: 3, Window: time.Hour}
}

// Result contains the outcome of a limiter check.
type Result struct {
	Allowed      bool
	CurrentCount int
	MaxAllowed   int
	WindowExpiry time.Time
	Message      string
}

// FixedWindowLimiter counts submissions per identity key. Increments go
// through Redis INCR, so concurrent submissions for one key serialize and
// exactly Max of them are allowed per window.
type FixedWindowLimiter struct {
	redis  *redis.Client
	config Config
	logger *logging.Logger
}

// NewFixedWindowLimiter creates a limiter backed by the given Redis client.
func NewFixedWindowLimiter(redisClient *redis.Client, config Config, logger *logging.Logger) *FixedWindowLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixedWindowLimiter{
		redis:  redisClient,
		config: config,
		logger: logger,
	}
}

// IdentityKey derives the counter key material from a source IP. Only the
// hash is ever stored.
func IdentityKey(sourceIP string) string {
	sum := sha256.Sum256([]byte(sourceIP))
	return hex.EncodeToString(sum[:])
}

// Check increments the counter for identity and reports whether this
// submission is within the limit. A Redis outage fails open: the
// submission proceeds and the outage is logged.
func (l *FixedWindowLimiter) Check(ctx context.Context, identity string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.check")
	defer span.End()
	span.SetAttributes(attribute.String("ratelimit.identity", identity))

	if !l.config.Enabled {
		return &Result{Allowed: true, MaxAllowed: l.config.Max}, nil
	}

	key := keyPrefix + identity
	count, expiry, err := l.incrementAndGet(ctx, key)
	if err != nil {
		l.logger.Error("rate limit check failed", "error", err, "key", key)
		// Fail open - accept the submission if Redis is down
		return &Result{Allowed: true, MaxAllowed: l.config.Max, Message: "rate limit check unavailable"}, nil
	}

	result := &Result{
		Allowed:      count <= l.config.Max,
		CurrentCount: count,
		MaxAllowed:   l.config.Max,
		WindowExpiry: expiry,
	}

	if !result.Allowed {
		result.Message = fmt.Sprintf("exceeded %d submissions in %s", l.config.Max, l.config.Window)
		l.logger.Warn("submission rate limit exceeded",
			"identity", identity,
			"count", count,
			"max", l.config.Max,
		)
		span.SetAttributes(attribute.Bool("ratelimit.exceeded", true))
	}

	return result, nil
}

// Reset clears the counter for an identity (admin use).
func (l *FixedWindowLimiter) Reset(ctx context.Context, identity string) error {
	return l.redis.Del(ctx, keyPrefix+identity).Err()
}

// incrementAndGet increments a counter and returns the new value with the
// window expiry time.
func (l *FixedWindowLimiter) incrementAndGet(ctx context.Context, key string) (int, time.Time, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	// Set expiry only on first increment
	if count == 1 {
		l.redis.Expire(ctx, key, l.config.Window)
	}

	ttl, err := l.redis.TTL(ctx, key).Result()
	if err != nil {
		ttl = l.config.Window
	}

	return int(count), time.Now().Add(ttl), nil
}
