package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMarkdownFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "# a")
	writeFile(t, filepath.Join(root, "sub", "b.md"), "# b")
	writeFile(t, filepath.Join(root, "notes.txt"), "not markdown")
	writeFile(t, filepath.Join(root, ".hidden", "c.md"), "# c")

	files, err := MarkdownFiles(root)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "a.md" || names[1] != "b.md" {
		t.Errorf("files = %v", names)
	}
}

func TestMarkdownFilesMissingRoot(t *testing.T) {
	if _, err := MarkdownFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestFileInfo(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.md")
	writeFile(t, path, "# doc")

	info := FileInfo(path)
	if info["name"].AsString() != "doc.md" {
		t.Errorf("name = %s", info["name"].AsString())
	}
	if info["path"].AsString() != path {
		t.Errorf("path = %s", info["path"].AsString())
	}
	if _, ok := info["modified"]; !ok {
		t.Error("missing modified timestamp")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandTilde("~/notes"); got != filepath.Join(home, "notes") {
		t.Errorf("ExpandTilde = %q", got)
	}
	if got := ExpandTilde("/abs/notes"); got != "/abs/notes" {
		t.Errorf("non-tilde path changed: %q", got)
	}
}
