package manifest

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DigestAll digests root/<catpkg> for every catpkg in sorted order.
// Directories that do not exist are skipped: the fast strategy runs after
// orphan cleanup and erasure and only refreshes what is still there. With
// workers > 1 up to that many directories are digested concurrently, and
// the first error cancels the rest.
func DigestAll(ctx context.Context, d Digester, root string, catpkgs []string, workers int) error {
	return digestAll(ctx, d, root, catpkgs, workers, false)
}

// DigestAllStrict is DigestAll for the authoritative strategy: every listed
// package was just written, so a missing directory is reported as a
// [MissingDescriptorError] instead of being skipped.
func DigestAllStrict(ctx context.Context, d Digester, root string, catpkgs []string, workers int) error {
	return digestAll(ctx, d, root, catpkgs, workers, true)
}

func digestAll(ctx context.Context, d Digester, root string, catpkgs []string, workers int, strict bool) error {
	sorted := slices.Clone(catpkgs)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	if workers <= 1 {
		for _, cp := range sorted {
			if err := digestOne(ctx, d, root, cp, strict); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, cp := range sorted {
		g.Go(func() error {
			return digestOne(gctx, d, root, cp, strict)
		})
	}
	return g.Wait()
}

func digestOne(ctx context.Context, d Digester, root, catpkg string, strict bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Join(root, filepath.FromSlash(catpkg))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if strict {
			return &MissingDescriptorError{Dir: dir}
		}
		return nil
	}
	return d.Digest(ctx, dir)
}
