package observability

import (
	"context"
	"time"
)

// ResolverHooks observes dependency resolution of one root name.
type ResolverHooks interface {
	OnResolveStart(ctx context.Context, name string)
	OnResolveComplete(ctx context.Context, name string, packages, skipped int, duration time.Duration, err error)
}

// TreeHooks observes generate, update and add passes over an overlay.
type TreeHooks interface {
	// OnPassStart fires once the set of packages to write is known.
	OnPassStart(ctx context.Context, mode string, packages int)
	// OnPackageWritten fires per descriptor; generated means it is new.
	OnPackageWritten(ctx context.Context, pkg string, generated bool)
	OnDigest(ctx context.Context, catpkg, strategy string, duration time.Duration, err error)
	OnPassComplete(ctx context.Context, mode string, duration time.Duration, err error)
}

// CacheHooks observes the archive cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks observes database downloads. OnError covers transport failures
// only; an HTTP error status arrives through OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

type (
	NoopResolverHooks struct{}
	NoopTreeHooks     struct{}
	NoopCacheHooks    struct{}
	NoopHTTPHooks     struct{}
)

func (NoopResolverHooks) OnResolveStart(context.Context, string)                                 {}
func (NoopResolverHooks) OnResolveComplete(context.Context, string, int, int, time.Duration, error) {}

func (NoopTreeHooks) OnPassStart(context.Context, string, int)                       {}
func (NoopTreeHooks) OnPackageWritten(context.Context, string, bool)                 {}
func (NoopTreeHooks) OnDigest(context.Context, string, string, time.Duration, error) {}
func (NoopTreeHooks) OnPassComplete(context.Context, string, time.Duration, error)   {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
