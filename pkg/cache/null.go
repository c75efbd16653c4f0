package cache

import (
	"context"
	"time"
)

// NullCache drops every write and misses every read. The CLI uses it for
// --no-cache so a sync always downloads the archive.
type NullCache struct{}

func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)              { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                       { return nil }
func (*NullCache) Close() error                                               { return nil }

var _ Cache = (*NullCache)(nil)
