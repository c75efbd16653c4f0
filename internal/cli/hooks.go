package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlaysmith/pkg/observability"
)

// logHooks reports library events at debug level.
type logHooks struct {
	observability.NoopTreeHooks
	logger *log.Logger
}

func (h logHooks) OnDigest(_ context.Context, catpkg, strategy string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("digest failed", "package", catpkg, "strategy", strategy, "error", err)
		return
	}
	h.logger.Debug("digested", "package", catpkg, "strategy", strategy, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnResolveStart(context.Context, string) {}

func (h logHooks) OnResolveComplete(_ context.Context, name string, packages, skipped int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("resolved", "name", name, "packages", packages, "skipped", skipped, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

// installHooks routes library events to the CLI logger.
func (c *CLI) installHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetResolverHooks(h)
	observability.SetTreeHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
}
