package ioutils

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// jpegExts are the extensions ScanImages accepts, compared case-insensitively.
var jpegExts = map[string]bool{".jpg": true, ".jpeg": true}

// IsJPEG reports whether path has a JPEG file extension.
func IsJPEG(path string) bool {
	return jpegExts[strings.ToLower(filepath.Ext(path))]
}

// FileExists reports whether path exists, whatever its type.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/photos/stamped/2024")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
//
// The file is created with mode 0644.
func WriteFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ScanImages returns the JPEG files in dir, sorted by path. Subdirectories
// are descended into only when recursive is set. Hidden entries are skipped.
func ScanImages(ctx context.Context, dir string, recursive bool) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasPrefix(d.Name(), ".") && IsJPEG(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// CollectImages expands args into an ordered, de-duplicated list of JPEG
// paths. Files are taken as given; directories are scanned with ScanImages.
func CollectImages(ctx context.Context, args []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		found, err := ScanImages(ctx, arg, recursive)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}

	return out, nil
}
