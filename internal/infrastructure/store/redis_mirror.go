package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

const domainMirrorPrefix = "rpc-capabilities:domain:"
const domainMirrorTTL = 5 * time.Minute

// RedisMirror is a best-effort mirror of per-origin capability tables. It is
// never consulted for an authorization decision and is never the source of
// truth: PermissionStore reads only the StateContainer, rewrites an origin's
// mirrored entry after each mutation of that origin, and drops the entry
// when the origin is emptied or the registry is cleared. Nothing in this
// module reads the mirror back; SnapshotDomain is there for outside readers.
type RedisMirror struct {
	client *redis.Client
}

// NewRedisMirror pings client so construction fails fast if Redis is
// unreachable; callers may still choose to run without a mirror at all.
func NewRedisMirror(client *redis.Client) (*RedisMirror, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisMirror{client: client}, nil
}

func domainMirrorKey(origin domain.Origin) string {
	return domainMirrorPrefix + string(origin)
}

// MirrorDomain stores entry for origin. Errors are not fatal to callers; the
// mirror is a cache, not a dependency.
func (m *RedisMirror) MirrorDomain(ctx context.Context, origin domain.Origin, entry domain.DomainEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, domainMirrorKey(origin), data, domainMirrorTTL).Err()
}

// SnapshotDomain returns the mirrored entry for origin, or ok=false on a
// cache miss or any error reaching Redis.
func (m *RedisMirror) SnapshotDomain(ctx context.Context, origin domain.Origin) (entry domain.DomainEntry, ok bool) {
	val, err := m.client.Get(ctx, domainMirrorKey(origin)).Result()
	if err != nil {
		return domain.DomainEntry{}, false
	}
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return domain.DomainEntry{}, false
	}
	return entry, true
}

// Invalidate drops the mirrored entry for origin so the next read falls
// through to the state container.
func (m *RedisMirror) Invalidate(ctx context.Context, origin domain.Origin) error {
	return m.client.Del(ctx, domainMirrorKey(origin)).Err()
}

// Close closes the underlying Redis connection.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
