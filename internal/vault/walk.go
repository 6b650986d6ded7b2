// Package vault enumerates markdown files under a search root and
// exposes per-file metadata as query values.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/7sedam7/krafna/internal/value"
)

// File is one markdown file found under the search root.
type File struct {
	Path  string
	Name  string
	Mtime time.Time
}

// MarkdownFiles walks root and returns every .md file in deterministic
// walk order. Hidden directories are skipped. An unenumerable root is
// fatal; unreadable entries below it are skipped.
func MarkdownFiles(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot open search root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search root %s is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, File{
			Path:  path,
			Name:  d.Name(),
			Mtime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate search root %s: %w", root, err)
	}
	return files, nil
}

// FileInfo builds the reserved file sub-map carried by every row:
// name, path, and the created/accessed/modified timestamps.
func FileInfo(path string) map[string]value.Value {
	m := map[string]value.Value{
		"name": value.String(filepath.Base(path)),
		"path": value.String(path),
	}
	info, err := os.Stat(path)
	if err != nil {
		return m
	}
	m["modified"] = value.Datetime(info.ModTime())
	if created, ok := birthTime(info); ok {
		m["created"] = value.Datetime(created)
	}
	if accessed, ok := accessTime(info); ok {
		m["accessed"] = value.Datetime(accessed)
	}
	return m
}

// ExpandTilde resolves a leading ~ against the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
