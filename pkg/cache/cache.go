package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLPage    = 5 * time.Minute  // rendered pages
	TTLPosts   = 30 * time.Second // post listings, refreshed often
	TTLTerms   = 10 * time.Minute // taxonomy trees, change rarely
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixPage  = "page:"
	PrefixPosts = "posts:"
	PrefixTerms = "terms:"
)

// Service Redis cache for rendered content. The promotion engines invalidate
// page keys after a commit; reads are filled by the rendering layer.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetPage(ctx context.Context, locale, slug string) ([]byte, error)
	SetPage(ctx context.Context, locale, slug string, data interface{}) error
	// InvalidatePost drops the page cache for one post and the listing cache
	// for its locale
	InvalidatePost(ctx context.Context, locale, slug string) error
}

type service struct {
	client *redis.Client
}

// NewService creates a cache service over a Redis client
func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *service) GetPage(ctx context.Context, locale, slug string) ([]byte, error) {
	return s.client.Get(ctx, pageKey(locale, slug)).Bytes()
}

func (s *service) SetPage(ctx context.Context, locale, slug string, data interface{}) error {
	return s.Set(ctx, pageKey(locale, slug), data, TTLPage)
}

func (s *service) InvalidatePost(ctx context.Context, locale, slug string) error {
	return s.Delete(ctx, pageKey(locale, slug), PrefixPosts+locale)
}

func pageKey(locale, slug string) string {
	return fmt.Sprintf("%s%s:%s", PrefixPage, locale, slug)
}
