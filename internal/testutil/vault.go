// Package testutil provides reusable helpers for tests that need a
// directory of markdown documents on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestVault is a temporary document tree for tests.
type TestVault struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestVault creates a vault builder. Call Build to materialize it.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file, path relative to the vault root.
func (v *TestVault) WithFile(path, content string) *TestVault {
	v.files[path] = content
	return v
}

// Build creates the vault directory and all configured files.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()
	v.Path = v.t.TempDir()
	for path, content := range v.files {
		v.writeFile(path, content)
	}
	return v
}

func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		v.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		v.t.Fatalf("failed to write %s: %v", relPath, err)
	}
}

// Touch pushes a file's modification time forward so caches keyed on
// mtime observe a change.
func (v *TestVault) Touch(relPath string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(fullPath, later, later); err != nil {
		v.t.Fatalf("failed to touch %s: %v", relPath, err)
	}
}
