package syncfolder

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type HostOptions struct {
	// MaxDigestBytes bounds the digested prefix; <= 0 digests whole files
	MaxDigestBytes int64
	// Workers bounds concurrent hashing; <= 0 uses runtime.NumCPU()
	Workers int
	Ignore  *IgnoreList
}

func (o *HostOptions) workers() int {
	if o == nil || o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// ValidateHostRoot checks that root exists and is a directory
func ValidateHostRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &IOError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Path: root, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

type hostEntry struct {
	rel      string
	abs      string
	checksum string
}

// BuildHostSnapshot walks root in lexical order and digests every regular
// file, including symlinks to regular files. A symlinked root is resolved
// first; symlinked directories below it are not descended into. When two
// files share a checksum the one walked later wins.
func BuildHostSnapshot(ctx context.Context, root string, opts *HostOptions) (Snapshot, error) {
	if err := ValidateHostRoot(root); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &HostOptions{}
	}

	// WalkDir lstats the root and would not enter a linked directory
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}
	root = resolved

	var entries []*hostEntry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Path: path, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return &IOError{Path: path, Err: err}
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if opts.Ignore.ShouldIgnore(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.Ignore.ShouldIgnore(rel) || !isRegularFile(path, d) {
			return nil
		}

		entries = append(entries, &hostEntry{rel: rel, abs: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, err := Checksum(e.abs, opts.MaxDigestBytes)
			if err != nil {
				return err
			}
			e.checksum = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := make(Snapshot, len(entries))
	for _, e := range entries {
		if prev, ok := snapshot[e.checksum]; ok {
			slog.Debug("host snapshot collision", "checksum", e.checksum[:16], "dropped", prev, "kept", e.rel)
		}
		snapshot[e.checksum] = e.rel
	}

	return snapshot, nil
}

// isRegularFile reports whether d is a regular file or a symlink to one.
// Dangling links are skipped.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("host snapshot skip link", "path", path, "error", err)
		return false
	}
	return info.Mode().IsRegular()
}
