// Package markdown parses one document's text into structured facts:
// frontmatter metadata, links in document order, and nested checklist
// tasks with dotted ordinals.
package markdown

import "github.com/7sedam7/krafna/internal/value"

// Link kinds. Inline links are standard []() markdown links; reference
// links are [[wikilink]] style.
const (
	LinkInline    = "inline"
	LinkReference = "reference"
)

// Link is one outgoing link, in document order.
type Link struct {
	Kind string
	// External is true for links with a URL scheme or protocol-relative
	// prefix; those never get a resolved Path.
	External bool
	// Path is the resolved target inside the search root, empty when
	// the link is external or resolution escapes the root.
	Path string
	// URL is the original target text as written.
	URL  string
	Text string
	Ord  int
}

// Task is one checklist item. Ord is dotted by nesting depth ("1",
// "1.1", "2"); Parent is the ordinal of the nearest enclosing task,
// empty for top-level items.
type Task struct {
	Checked bool
	Text    string
	Ord     string
	Parent  string
}

// Document is the immutable parse result for a single file.
type Document struct {
	Path     string
	Title    string
	Metadata map[string]value.Value
	Links    []Link
	Tasks    []Task
}
