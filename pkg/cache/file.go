package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/overlaysmith/pkg/observability"
)

const (
	blobExt = ".blob"
	metaExt = ".toml"
)

// FileCache keeps each entry as two files under dir, sharded by the first
// byte of the key's SHA-256: the raw payload (.blob) and a small TOML record
// with the key and expiry (.toml). The record is written last, so an entry
// without one does not exist.
type FileCache struct {
	dir string
}

// NewFileCache creates dir if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Dir() string { return c.dir }

type entryMeta struct {
	Key     string    `toml:"key"`
	Size    int       `toml:"size"`
	Expires time.Time `toml:"expires,omitempty"`
}

func (m entryMeta) expired(now time.Time) bool {
	return !m.Expires.IsZero() && now.After(m.Expires)
}

// Get returns the payload for key. Expired, unreadable or truncated
// entries are deleted and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	base := c.path(key)

	var meta entryMeta
	_, err := toml.DecodeFile(base+metaExt, &meta)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false, nil
	case err != nil, meta.Key != key, meta.expired(time.Now()):
		c.remove(base)
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false, nil
	}

	data, err := os.ReadFile(base + blobExt)
	if err != nil || len(data) != meta.Size {
		c.remove(base)
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, key)
	return data, true, nil
}

// Set stores data under key; ttl <= 0 never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	base := c.path(key)
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return err
	}

	meta := entryMeta{Key: key, Size: len(data)}
	if ttl > 0 {
		meta.Expires = time.Now().Add(ttl).UTC()
	}
	var rec strings.Builder
	if err := toml.NewEncoder(&rec).Encode(meta); err != nil {
		return err
	}

	// Drop the old record first so a crash between the writes leaves a miss.
	if err := os.Remove(base + metaExt); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := writeAtomic(base+blobExt, data); err != nil {
		return err
	}
	if err := writeAtomic(base+metaExt, []byte(rec.String())); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	return c.remove(c.path(key))
}

// Clear removes every entry and returns how many there were.
func (c *FileCache) Clear() (int, error) {
	n := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != metaExt {
			return nil
		}
		if c.remove(strings.TrimSuffix(path, metaExt)) == nil {
			n++
		}
		return nil
	})
	return n, err
}

// Stats counts the entries on disk and the bytes of their payloads,
// expired entries included.
func (c *FileCache) Stats() (entries int, size int64, err error) {
	err = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != metaExt {
			return nil
		}
		fi, err := os.Stat(strings.TrimSuffix(path, metaExt) + blobExt)
		if err != nil {
			return nil
		}
		entries++
		size += fi.Size()
		return nil
	})
	return entries, size, err
}

func (c *FileCache) Close() error { return nil }

// path returns the entry's file name without extension.
func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, h[:2], h[2:])
}

func (c *FileCache) remove(base string) error {
	var errs []error
	for _, ext := range []string{metaExt, blobExt} {
		if err := os.Remove(base + ext); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

var _ Cache = (*FileCache)(nil)
