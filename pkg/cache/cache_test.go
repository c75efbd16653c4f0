package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "db:https://example.org/db.tar.gz", []byte("archive"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "db:https://example.org/db.tar.gz")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(data) != "archive" {
		t.Errorf("Get = %q, want archive", data)
	}

	if err := c.Delete(ctx, "db:https://example.org/db.tar.gz"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "db:https://example.org/db.tar.gz"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("expired entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(c.path("k") + blobExt); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
		t.Fatal(err)
	}

	tests := map[string]func(base string) error{
		"bad record": func(base string) error {
			return os.WriteFile(base+metaExt, []byte("key = "), 0o644)
		},
		"truncated blob": func(base string) error {
			return os.WriteFile(base+blobExt, []byte("pay"), 0o644)
		},
		"missing blob": func(base string) error {
			return os.Remove(base + blobExt)
		},
	}
	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
				t.Fatal(err)
			}
			if err := corrupt(c.path("k")); err != nil {
				t.Fatal(err)
			}
			if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
				t.Errorf("hit %v, err %v", hit, err)
			}
			if _, err := os.Stat(c.path("k") + metaExt); !os.IsNotExist(err) {
				t.Error("corrupt entry left on disk")
			}
		})
	}
}

func TestFileCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"first archive", "second"} {
		if err := c.Set(ctx, "db:main", []byte(v), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	data, hit, err := c.Get(ctx, "db:main")
	if err != nil || !hit || string(data) != "second" {
		t.Errorf("Get = %q, hit %v, err %v", data, hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	entries, size, err := c.Stats()
	if err != nil || entries != 3 || size != 3 {
		t.Errorf("Stats = %d entries, %d bytes, err %v", entries, size, err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry should be gone after Clear")
	}
}

func TestKey(t *testing.T) {
	if got := Key("db", "https://example.org/db.tar.gz"); got != "db:https://example.org/db.tar.gz" {
		t.Errorf("Key = %q", got)
	}
	if got := Key("db", "a", "b"); got != "db:a:b" {
		t.Errorf("Key = %q", got)
	}
}
