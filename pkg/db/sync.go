package db

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlaysmith/pkg/cache"
	"github.com/matzehuels/overlaysmith/pkg/errors"
	"github.com/matzehuels/overlaysmith/pkg/httputil"
)

// DefaultArchiveTTL is how long a downloaded database archive is reused.
const DefaultArchiveTTL = 24 * time.Hour

// maxArchiveSize bounds both the download and the extracted content.
const maxArchiveSize = 512 << 20

// Syncer replaces a local database with a remote tar.gz archive.
type Syncer struct {
	Fetcher *httputil.Fetcher
	Cache   cache.Cache
	TTL     time.Duration

	// Refresh bypasses cached archives.
	Refresh bool

	Logger *log.Logger
}

// Sync downloads the archive at uri, validates it and installs it as the
// database under dir. The previous database is only removed once the new one
// has been read successfully.
func (s *Syncer) Sync(ctx context.Context, uri, dir string) (*PackageDB, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	data, err := s.archive(ctx, uri, logger)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSync, err, "create %s", filepath.Dir(dir))
	}
	tmp, err := os.MkdirTemp(filepath.Dir(dir), ".sync-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSync, err, "create staging directory")
	}
	defer os.RemoveAll(tmp)

	if err := Extract(bytes.NewReader(data), tmp); err != nil {
		return nil, err
	}
	root, err := databaseRoot(tmp)
	if err != nil {
		return nil, err
	}
	if _, err := Open(root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSync, err, "downloaded database from %s is invalid", uri)
	}

	logger.Debug("installing database", "dir", dir)
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSync, err, "remove old database")
	}
	if err := os.Rename(root, dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSync, err, "install database")
	}

	if s.Cache != nil {
		ttl := s.TTL
		if ttl == 0 {
			ttl = DefaultArchiveTTL
		}
		if err := s.Cache.Set(ctx, cache.Key("db", uri), data, ttl); err != nil {
			logger.Warn("could not cache database archive", "err", err)
		}
	}

	return Open(dir)
}

func (s *Syncer) archive(ctx context.Context, uri string, logger *log.Logger) ([]byte, error) {
	key := cache.Key("db", uri)
	if s.Cache != nil && !s.Refresh {
		data, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", "err", err)
		}
		if ok {
			logger.Debug("using cached database archive", "uri", uri)
			return data, nil
		}
	}

	f := s.Fetcher
	if f == nil {
		f = &httputil.Fetcher{MaxSize: maxArchiveSize}
	}
	logger.Debug("downloading database", "uri", uri)
	data, err := f.Fetch(ctx, uri)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeSync, err, "download %s", uri)
	}
	return data, nil
}

// databaseRoot returns dir when it holds a database, or its single
// subdirectory when the archive wrapped the database in a top-level folder.
func databaseRoot(dir string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, layoutFile)); err == nil {
		return dir, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSync, err, "read extracted archive")
	}
	if len(entries) == 1 && entries[0].IsDir() {
		sub := filepath.Join(dir, entries[0].Name())
		if _, err := os.Stat(filepath.Join(sub, layoutFile)); err == nil {
			return sub, nil
		}
	}
	return "", errors.New(errors.ErrCodeSync, "archive does not contain %s", layoutFile)
}

// Extract unpacks a gzip-compressed tar stream into dst. Only regular files
// and directories are materialised; member paths must stay inside dst.
func Extract(r io.Reader, dst string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSync, err, "open archive")
	}
	defer gz.Close()

	var total int64
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeSync, err, "read archive")
		}

		name := strings.TrimPrefix(filepath.ToSlash(hdr.Name), "./")
		name = strings.TrimSuffix(name, "/")
		if name == "" || name == "." {
			continue
		}
		if err := errors.ValidatePath(name); err != nil {
			return errors.Wrap(errors.ErrCodeSync, err, "unsafe archive member %q", hdr.Name)
		}
		target := filepath.Join(dst, filepath.FromSlash(name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeSync, err, "extract %s", name)
			}
		case tar.TypeReg:
			total += hdr.Size
			if total > maxArchiveSize {
				return errors.New(errors.ErrCodeSync, "archive expands beyond %d bytes", maxArchiveSize)
			}
			if err := extractFile(tr, target, hdr.Size); err != nil {
				return errors.Wrap(errors.ErrCodeSync, err, "extract %s", name)
			}
		default:
			// links, devices and the like have no place in a database
		}
	}
}

func extractFile(r io.Reader, target string, size int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(f, r, size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
