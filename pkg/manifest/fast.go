package manifest

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Fast digests package directories in-process.
type Fast struct{}

// Digest rewrites dir/Manifest from the files on disk. Existing DIST lines
// are preserved; every line is sorted. Nothing is ever deleted.
func (Fast) Digest(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lines, err := fastLines(dir)
	if err != nil {
		return &DigestError{Dir: dir, Err: err}
	}

	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), buf.Bytes(), 0o644); err != nil {
		return &DigestError{Dir: dir, Err: err}
	}
	return nil
}

func fastLines(dir string) ([]string, error) {
	var lines []string

	files := filepath.Join(dir, "files")
	err := filepath.WalkDir(files, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == files && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(files, path)
		if err != nil {
			return err
		}
		e, err := HashFile(KindAux, filepath.ToSlash(rel), path)
		if err != nil {
			return err
		}
		lines = append(lines, e.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, de := range entries {
		name := de.Name()
		if !de.Type().IsRegular() || !strings.HasSuffix(name, ".ebuild") {
			continue
		}
		e, err := HashFile(KindEbuild, name, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		lines = append(lines, e.String())
	}

	metadata := filepath.Join(dir, "metadata.xml")
	if info, err := os.Stat(metadata); err == nil && info.Mode().IsRegular() {
		e, err := HashFile(KindMisc, "metadata.xml", metadata)
		if err != nil {
			return nil, err
		}
		lines = append(lines, e.String())
	}

	dist, err := distLines(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	lines = append(lines, dist...)

	slices.Sort(lines)
	return lines, nil
}

func distLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, string(KindDist)+" ") {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
