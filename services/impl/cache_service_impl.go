package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaultrag-api/services"
)

const embeddingCacheTTL = 24 * time.Hour

// cacheKey is stable per (model, text) pair; the separator keeps distinct
// pairs from colliding on concatenation.
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

// redisEmbeddingCache memoizes query embeddings in Redis. Every failure is
// swallowed after logging: the cache only ever saves work, it never fails a
// chat turn.
type redisEmbeddingCache struct {
	client *redis.Client
}

func NewEmbeddingCacheWithRedis(client *redis.Client) services.EmbeddingCache {
	return &redisEmbeddingCache{client: client}
}

func (c *redisEmbeddingCache) Get(ctx context.Context, model, text string) ([]float32, bool) {
	data, err := c.client.Get(ctx, cacheKey(model, text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Embedding cache get failed: %v", err)
		}
		return nil, false
	}
	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		log.Printf("Embedding cache entry corrupt, dropping: %v", err)
		c.client.Del(ctx, cacheKey(model, text))
		return nil, false
	}
	return vector, true
}

func (c *redisEmbeddingCache) Put(ctx context.Context, model, text string, vector []float32) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(model, text), data, embeddingCacheTTL).Err(); err != nil {
		log.Printf("Embedding cache put failed: %v", err)
	}
}

// memoryEmbeddingCache is the in-process fallback used when Redis is not
// configured. Bounded; eviction clears the whole map, which is fine for a
// memoization cache.
type memoryEmbeddingCache struct {
	mu         sync.RWMutex
	entries    map[string][]float32
	maxEntries int
}

func NewMemoryEmbeddingCache(maxEntries int) services.EmbeddingCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &memoryEmbeddingCache{
		entries:    make(map[string][]float32),
		maxEntries: maxEntries,
	}
}

func (c *memoryEmbeddingCache) Get(_ context.Context, model, text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.entries[cacheKey(model, text)]
	return vector, ok
}

func (c *memoryEmbeddingCache) Put(_ context.Context, model, text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.entries = make(map[string][]float32)
	}
	c.entries[cacheKey(model, text)] = vector
}
