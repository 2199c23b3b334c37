package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
)

const dirPerm = 0o755

// Files performs file operations on the host filesystem.
type Files struct {
	// Root is the base for relative paths. Empty means the process working
	// directory.
	Root string
}

var _ driver.FileDriver = (*Files)(nil)

// NewFiles creates a file driver rooted at root.
func NewFiles(root string) *Files {
	return &Files{Root: root}
}

func (f *Files) path(p string) string { return resolve(f.Root, p) }

// Mkdir creates path and any missing parents.
func (f *Files) Mkdir(ctx context.Context, path string) error {
	ctxlog.FromContext(ctx).Debug("Creating directory.", "path", path)
	return os.MkdirAll(f.path(path), dirPerm)
}

// Touch creates an empty file or updates the modification time of an
// existing one.
func (f *Files) Touch(ctx context.Context, path string) error {
	ctxlog.FromContext(ctx).Debug("Touching file.", "path", path)
	p := f.path(path)
	now := time.Now()
	if err := os.Chtimes(p, now, now); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	file, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return file.Close()
}

// Copy copies a single regular file, preserving its permission bits.
func (f *Files) Copy(ctx context.Context, src, dst string) error {
	ctxlog.FromContext(ctx).Debug("Copying file.", "src", src, "dst", dst)
	return copyFile(f.path(src), f.path(dst))
}

// Move renames src to dst, falling back to copy and delete across devices.
func (f *Files) Move(ctx context.Context, src, dst string) error {
	ctxlog.FromContext(ctx).Debug("Moving file.", "src", src, "dst", dst)
	from, to := f.path(src), f.path(dst)
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	if err := copyFile(from, to); err != nil {
		return err
	}
	return os.Remove(from)
}

// CopyTree copies the directory tree rooted at src into dst.
func (f *Files) CopyTree(ctx context.Context, src, dst string) error {
	ctxlog.FromContext(ctx).Debug("Copying tree.", "src", src, "dst", dst)
	return copyTree(ctx, f.path(src), f.path(dst))
}

// MoveTree moves the directory tree rooted at src to dst.
func (f *Files) MoveTree(ctx context.Context, src, dst string) error {
	ctxlog.FromContext(ctx).Debug("Moving tree.", "src", src, "dst", dst)
	from, to := f.path(src), f.path(dst)
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	if err := copyTree(ctx, from, to); err != nil {
		return err
	}
	return os.RemoveAll(from)
}

// Remove deletes a file or an empty directory.
func (f *Files) Remove(ctx context.Context, path string) error {
	ctxlog.FromContext(ctx).Debug("Removing path.", "path", path)
	return os.Remove(f.path(path))
}

// RemoveTree deletes path and everything below it. A missing path is not an
// error.
func (f *Files) RemoveTree(ctx context.Context, path string) error {
	ctxlog.FromContext(ctx).Debug("Removing tree.", "path", path)
	return os.RemoveAll(f.path(path))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, dirPerm)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(p, target)
		}
	})
}
