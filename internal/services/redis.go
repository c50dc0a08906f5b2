package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis parses url and checks the server answers.
func InitRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return client, nil
}

// pendingClaim marks a key whose booking is still being written.
const pendingClaim = "pending"

// DedupeStore remembers recent booking submissions.
type DedupeStore interface {
	// Claim reserves key for ttl. When the key is already held it returns the
	// stored value (a booking number, or "" while the first submission is in
	// flight) and claimed=false.
	Claim(ctx context.Context, key string, ttl time.Duration) (existing string, claimed bool, err error)
	Complete(ctx context.Context, key, bookingNumber string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type RedisDedupe struct {
	client *redis.Client
	prefix string
}

func NewRedisDedupe(client *redis.Client) *RedisDedupe {
	return &RedisDedupe{client: client, prefix: "booking:dedupe:"}
}

func (d *RedisDedupe) Claim(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, pendingClaim, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	value, err := d.client.Get(ctx, d.prefix+key).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; try once more.
		ok, err = d.client.SetNX(ctx, d.prefix+key, pendingClaim, ttl).Result()
		return "", ok, err
	}
	if err != nil {
		return "", false, err
	}
	if value == pendingClaim {
		value = ""
	}
	return value, false, nil
}

func (d *RedisDedupe) Complete(ctx context.Context, key, bookingNumber string, ttl time.Duration) error {
	return d.client.Set(ctx, d.prefix+key, bookingNumber, ttl).Err()
}

func (d *RedisDedupe) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+key).Err()
}

// SubmissionKey identifies a booking submission. An explicit idempotency key
// wins; otherwise the customer email, item and start date are hashed.
func SubmissionKey(idempotencyKey, email, bookingType string, itemID uint, startDate time.Time) string {
	if k := strings.TrimSpace(idempotencyKey); k != "" {
		return "idem:" + k
	}
	raw := fmt.Sprintf("%s|%s|%d|%s", strings.ToLower(strings.TrimSpace(email)), bookingType, itemID, startDate.Format("2006-01-02"))
	sum := sha256.Sum256([]byte(raw))
	return "sub:" + hex.EncodeToString(sum[:])
}
