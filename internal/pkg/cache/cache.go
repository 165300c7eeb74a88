package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client handle. It is constructed once at startup and
// injected into the components that need it.
type Cache struct {
	client *redis.Client
}

// New connects to the cache server and returns a handle. A failed ping is
// logged, not fatal: the cache is an optimization, never a source of truth.
func New(host, port string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	if pong, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("cache: could not connect to redis at %s:%s: %v", host, port, err)
	} else {
		log.Printf("cache: connected to redis: %s", pong)
	}

	return &Cache{client: client}
}

// Set stores a value under key with the given expiration.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a string value by key.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// Delete removes a value by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

const cardTTL = 24 * time.Hour

type cardEntry struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

// CardStore memoizes payment-method card details so webhook redeliveries do
// not repeat the processor lookup. Misses and cache errors both report a
// miss; the caller falls back to the processor.
type CardStore struct {
	cache *Cache
}

// NewCardStore wraps a cache handle for card lookups.
func NewCardStore(c *Cache) *CardStore {
	return &CardStore{cache: c}
}

func (s *CardStore) GetCard(ctx context.Context, paymentMethodID string) (brand string, last4 string, ok bool) {
	raw, err := s.cache.Get(ctx, cardKey(paymentMethodID))
	if err != nil {
		return "", "", false
	}
	var entry cardEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", "", false
	}
	return entry.Brand, entry.Last4, true
}

func (s *CardStore) SetCard(ctx context.Context, paymentMethodID, brand, last4 string) {
	raw, err := json.Marshal(cardEntry{Brand: brand, Last4: last4})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cardKey(paymentMethodID), string(raw), cardTTL); err != nil {
		log.Printf("cache: storing card details for %s failed: %v", paymentMethodID, err)
	}
}

func cardKey(paymentMethodID string) string {
	return "pm:card:" + paymentMethodID
}
