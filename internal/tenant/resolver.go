package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// resolveCacheTTL bounds how long a stale directory entry can keep serving the
// guard after a tenant is renamed or suspended.
const resolveCacheTTL = 5 * time.Minute

// Resolver converts a raw, client-supplied tenant identifier (canonical id or
// slug) into the directory entry. The guard calls it on every tenant-scoped
// request.
type Resolver interface {
	Resolve(ctx context.Context, idOrSlug string) (*Tenant, error)
}

type directoryResolver struct {
	repo Repository
}

// NewResolver returns a Resolver that hits the tenant directory directly.
func NewResolver(repo Repository) Resolver {
	return &directoryResolver{repo: repo}
}

func (r *directoryResolver) Resolve(ctx context.Context, idOrSlug string) (*Tenant, error) {
	if idOrSlug == "" {
		return nil, ErrNotFound
	}
	return r.repo.GetByIDOrSlug(ctx, idOrSlug)
}

// cachedEntry is the subset of Tenant kept in Redis for guard decisions.
type cachedEntry struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

type cachedResolver struct {
	inner  Resolver
	client redis.UniversalClient
	logger *zap.Logger
}

// NewCachedResolver wraps a Resolver with a Redis lookaside cache. Misses in
// the directory are not negatively cached, so a freshly created tenant becomes
// resolvable immediately.
func NewCachedResolver(inner Resolver, client redis.UniversalClient, logger *zap.Logger) Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedResolver{inner: inner, client: client, logger: logger}
}

func (r *cachedResolver) Resolve(ctx context.Context, idOrSlug string) (*Tenant, error) {
	key := cacheKey(idOrSlug)

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var entry cachedEntry
		if jsonErr := json.Unmarshal(data, &entry); jsonErr == nil && entry.ID != "" {
			return &Tenant{ID: entry.ID, Slug: entry.Slug, Status: entry.Status}, nil
		}
	}

	t, err := r.inner.Resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	entry := cachedEntry{ID: t.ID, Slug: t.Slug, Status: t.Status}
	if data, jsonErr := json.Marshal(entry); jsonErr == nil {
		// A failed cache write only costs the next request a directory query.
		if setErr := r.client.Set(ctx, key, data, resolveCacheTTL).Err(); setErr != nil {
			r.logger.Debug("tenant resolve cache write failed", zap.Error(setErr))
		}
	}
	return t, nil
}

func cacheKey(idOrSlug string) string {
	return fmt.Sprintf("tenant:resolve:%s", idOrSlug)
}
