package resolvercache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kspt-johs/disir-go/pkg/disir"
	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
)

// Entry is the cached outcome of resolving a Keyval's default value at
// a particular target Version — the only thing worth caching, since
// the effective* functions in pkg/disir are pure given (node, version)
// but re-walk a sorted slice on every call.
type Entry struct {
	Found bool
	Value string // disir.Value formatted via Format(), re-parsed by the caller against the Keyval's declared type
}

// Resolver wraps disir.Mold lookups with a local LRU tier and a Redis
// tier, so repeated "resolve timeout for v2.3.0" calls across
// disir-server replicas hit neither the Mold tree nor Redis more than
// once per TTL window.
type Resolver struct {
	local   *lru.Cache[string, Entry]
	remote  Cache
	ttl     time.Duration
	metrics *disirmetrics.CacheMetrics
}

// NewResolver builds a Resolver. remote may be nil to run LRU-only.
func NewResolver(localSize int, remote Cache, ttl time.Duration, metrics *disirmetrics.CacheMetrics) (*Resolver, error) {
	local, err := lru.New[string, Entry](localSize)
	if err != nil {
		return nil, fmt.Errorf("create local resolver cache: %w", err)
	}
	return &Resolver{local: local, remote: remote, ttl: ttl, metrics: metrics}, nil
}

// key identifies a cached resolution: the mold-side Keyval's resolved
// path plus the target version it was resolved against.
func key(moldPath string, target disir.Version) string {
	return moldPath + "@" + target.String()
}

// ResolveDefault returns the cached (or freshly computed) effective
// default value of the named Keyval in mold, at target version.
// moldPath identifies the Keyval for cache-key purposes (callers
// typically pass the dotted path produced when they walked to it).
func (r *Resolver) ResolveDefault(ctx context.Context, moldPath string, kv *disir.Keyval, target disir.Version) (disir.Value, bool, error) {
	start := time.Now()
	defer func() { r.observeLatency(time.Since(start)) }()

	k := key(moldPath, target)

	if entry, ok := r.local.Get(k); ok {
		r.recordLocalHit()
		if !entry.Found {
			return disir.Value{}, false, nil
		}
		v, err := disir.ParseValue(kv.ValueType(), entry.Value)
		return v, true, err
	}
	r.recordLocalMiss()

	if r.remote != nil {
		var entry Entry
		err := r.remote.Get(ctx, k, &entry)
		if err == nil {
			r.recordRemoteHit()
			r.local.Add(k, entry)
			if !entry.Found {
				return disir.Value{}, false, nil
			}
			v, parseErr := disir.ParseValue(kv.ValueType(), entry.Value)
			return v, true, parseErr
		}
		if !IsNotFound(err) {
			r.recordError()
		} else {
			r.recordRemoteMiss()
		}
	}

	def, ok := kv.DefaultAt(target)
	entry := Entry{Found: ok}
	if ok {
		entry.Value = def.Format()
	}
	r.local.Add(k, entry)
	if r.remote != nil {
		_ = r.remote.Set(ctx, k, entry, r.ttl)
	}

	if !ok {
		return disir.Value{}, false, nil
	}
	return def, true, nil
}

// Invalidate drops a cached resolution, e.g. after a Mold document is
// updated in the registry.
func (r *Resolver) Invalidate(ctx context.Context, moldPath string, target disir.Version) {
	k := key(moldPath, target)
	r.local.Remove(k)
	if r.remote != nil {
		_ = r.remote.Delete(ctx, k)
	}
}

func (r *Resolver) recordLocalHit() {
	if r.metrics != nil {
		r.metrics.LocalHits.Inc()
	}
}
func (r *Resolver) recordLocalMiss() {
	if r.metrics != nil {
		r.metrics.LocalMisses.Inc()
	}
}
func (r *Resolver) recordRemoteHit() {
	if r.metrics != nil {
		r.metrics.RemoteHits.Inc()
	}
}
func (r *Resolver) recordRemoteMiss() {
	if r.metrics != nil {
		r.metrics.RemoteMisses.Inc()
	}
}
func (r *Resolver) recordError() {
	if r.metrics != nil {
		r.metrics.Errors.Inc()
	}
}
func (r *Resolver) observeLatency(d time.Duration) {
	if r.metrics != nil {
		r.metrics.LookupLatency.Observe(d.Seconds())
	}
}
