package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/7sedam7/krafna/internal/markdown"
	"github.com/7sedam7/krafna/internal/value"
)

func testDoc(path string) *markdown.Document {
	return &markdown.Document{
		Path:  path,
		Title: "t",
		Metadata: map[string]value.Value{
			"title": value.String("t"),
		},
		Links: []markdown.Link{},
		Tasks: []markdown.Task{{Checked: true, Text: "x", Ord: "1"}},
	}
}

func TestGetParsesOnceAndHits(t *testing.T) {
	c, err := Open("", 8)
	if err != nil {
		t.Fatal(err)
	}
	mtime := time.Now()
	calls := 0
	parse := func() (*markdown.Document, error) {
		calls++
		return testDoc("/v/a.md"), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Get("/v/a.md", mtime, parse); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("parse called %d times, want 1", calls)
	}
}

func TestMtimeChangeInvalidates(t *testing.T) {
	c, err := Open("", 8)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	parse := func() (*markdown.Document, error) {
		calls++
		return testDoc("/v/a.md"), nil
	}

	base := time.Now()
	if _, err := c.Get("/v/a.md", base, parse); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get("/v/a.md", base.Add(time.Second), parse); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("parse called %d times, want 2", calls)
	}
	// The fresh entry supersedes the stale one instead of coexisting
	// with it until capacity eviction.
	if c.Len() != 1 {
		t.Errorf("cache holds %d entries after reparse, want 1", c.Len())
	}
}

func TestStaleEntryDroppedFromBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.bin")
	c, err := Open(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	parse := func() (*markdown.Document, error) {
		return testDoc("/v/a.md"), nil
	}

	base := time.Now()
	if _, err := c.Get("/v/a.md", base, parse); err != nil {
		t.Fatal(err)
	}
	edited := base.Add(time.Second)
	if _, err := c.Get("/v/a.md", edited, parse); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Open(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded %d entries, want 1", reloaded.Len())
	}
	if _, err := reloaded.Get("/v/a.md", edited, func() (*markdown.Document, error) {
		t.Fatal("current mtime should hit")
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "documents.bin")
	c, err := Open(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	mtime := time.Now()
	if _, err := c.Get("/v/a.md", mtime, func() (*markdown.Document, error) {
		return testDoc("/v/a.md"), nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Open(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded %d entries", reloaded.Len())
	}
	doc, err := reloaded.Get("/v/a.md", mtime, func() (*markdown.Document, error) {
		t.Fatal("should not reparse after reload")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "t" || len(doc.Tasks) != 1 || doc.Metadata["title"].AsString() != "t" {
		t.Errorf("reloaded doc = %+v", doc)
	}
}

func TestCorruptBlobIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.bin")
	if err := os.WriteFile(path, []byte("not a cache"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Open(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("corrupt blob produced %d entries", c.Len())
	}
}

func TestWrongVersionIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.bin")
	if err := os.WriteFile(path, append([]byte("KRFC"), 0xFE), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Open(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("wrong version produced %d entries", c.Len())
	}
}
