// Package rediscache wraps the lemmatizer client with a Redis lookaside
// cache. Term analyses are deterministic for a given language, so cached
// entries never need invalidation, only expiry.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lexivid/annotator-backend/internal/clients/lemmatizer"
	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/matcher"
)

type cachedLemmatizer struct {
	log  *logger.Logger
	rdb  *goredis.Client
	next lemmatizer.Client
	ttl  time.Duration
}

// NewClient builds the Redis connection from the environment and pings it
// before use. Callers that run without Redis should keep the plain client.
func NewClient(log *logger.Logger, next lemmatizer.Client) (lemmatizer.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if next == nil {
		return nil, fmt.Errorf("wrapped lemmatizer required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("LEMMA_CACHE_TTL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			ttl = time.Duration(parsed) * time.Second
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cachedLemmatizer{
		log:  log.With("service", "CachedLemmatizer"),
		rdb:  rdb,
		next: next,
		ttl:  ttl,
	}, nil
}

// NewWithClient wires an existing Redis connection, used by tests.
func NewWithClient(log *logger.Logger, rdb *goredis.Client, next lemmatizer.Client, ttl time.Duration) lemmatizer.Client {
	return &cachedLemmatizer{
		log:  log.With("service", "CachedLemmatizer"),
		rdb:  rdb,
		next: next,
		ttl:  ttl,
	}
}

func cacheKey(lang, term string) string {
	return "lemma:" + lang + ":" + strings.ToLower(strings.TrimSpace(term))
}

func (c *cachedLemmatizer) LemmatizeTerm(ctx context.Context, lang, term string) (matcher.Concept, error) {
	key := cacheKey(lang, term)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached matcher.Concept
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached.Tokens) > 0 {
			return cached, nil
		}
		// stale or corrupt entry, fall through to the service
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != goredis.Nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
	}

	concept, err := c.next.LemmatizeTerm(ctx, lang, term)
	if err != nil {
		return matcher.Concept{}, err
	}

	if raw, jsonErr := json.Marshal(concept); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.log.Warn("cache write failed", "key", key, "error", setErr)
		}
	}
	return concept, nil
}
