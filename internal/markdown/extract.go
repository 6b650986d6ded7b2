package markdown

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/7sedam7/krafna/internal/value"
)

var wikilinkRe = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)

// Parse extracts a Document from one file's raw text. path is the
// file's location on disk and root the search root used to validate
// internal link targets.
func Parse(path, root string, content []byte) (*Document, error) {
	meta, body, err := parseFrontmatter(string(content))
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Path:     path,
		Metadata: meta,
		Links:    []Link{},
		Tasks:    []Task{},
	}
	if title, ok := meta["title"]; ok && title.Kind() == value.KindString {
		doc.Title = title.AsString()
	}

	ex := &extractor{
		doc:    doc,
		root:   root,
		dir:    filepath.Dir(path),
		source: []byte(body),
	}
	ex.run()
	return doc, nil
}

// pendingLink is a link candidate keyed by its byte offset in the body,
// so inline links and wikilinks share one document-order sequence.
type pendingLink struct {
	offset int
	link   Link
}

// extractor walks the goldmark AST once, collecting the title, links,
// and checklist tasks with depth-tracked ordinals.
type extractor struct {
	doc    *Document
	root   string
	dir    string
	source []byte

	pending []pendingLink
	// cursor tracks the most recent text offset seen, a fallback for
	// inline nodes that expose no segment of their own.
	cursor int
	// code holds byte ranges of code blocks and spans; wikilink syntax
	// inside them is literal text, not a link.
	code []text.Segment

	// counters holds one per-depth task counter, pushed on list entry
	// and popped on exit. A task's ordinal is the dotted join of the
	// live counters.
	counters []int
}

func (ex *extractor) run() {
	md := goldmark.New(goldmark.WithExtensions(extension.TaskList))
	tree := md.Parser().Parse(text.NewReader(ex.source))

	ast.Walk(tree, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.List:
			if entering {
				ex.counters = append(ex.counters, 0)
			} else {
				ex.counters = ex.counters[:len(ex.counters)-1]
			}
		case *ast.ListItem:
			if entering {
				ex.visitListItem(node)
			}
		case *ast.Heading:
			if entering && node.Level == 1 && ex.doc.Title == "" {
				ex.doc.Title = strings.TrimSpace(ex.nodeText(node))
			}
		case *ast.Link:
			if entering {
				ex.addLink(ex.nodeOffset(node), string(node.Destination), ex.nodeText(node))
				return ast.WalkSkipChildren, nil
			}
		case *ast.AutoLink:
			if entering {
				url := string(node.URL(ex.source))
				ex.addLink(ex.cursor, url, url)
			}
		case *ast.FencedCodeBlock:
			if entering {
				ex.markCodeLines(node)
			}
		case *ast.CodeBlock:
			if entering {
				ex.markCodeLines(node)
			}
		case *ast.CodeSpan:
			if entering {
				for child := node.FirstChild(); child != nil; child = child.NextSibling() {
					if t, ok := child.(*ast.Text); ok {
						ex.code = append(ex.code, t.Segment)
					}
				}
			}
		case *ast.Text:
			if entering {
				ex.cursor = node.Segment.Start
			}
		}
		return ast.WalkContinue, nil
	})

	ex.scanWikilinks()

	sort.SliceStable(ex.pending, func(i, j int) bool {
		return ex.pending[i].offset < ex.pending[j].offset
	})
	for i := range ex.pending {
		ex.pending[i].link.Ord = i + 1
		ex.doc.Links = append(ex.doc.Links, ex.pending[i].link)
	}
}

func (ex *extractor) markCodeLines(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		ex.code = append(ex.code, lines.At(i))
	}
}

func (ex *extractor) inCode(offset int) bool {
	for _, seg := range ex.code {
		if offset >= seg.Start && offset < seg.Stop {
			return true
		}
	}
	return false
}

// visitListItem records a task when the item carries a checkbox. The
// per-depth counter only advances for checklist items, so plain list
// entries do not consume ordinals.
func (ex *extractor) visitListItem(item *ast.ListItem) {
	checkbox := findCheckbox(item)
	if checkbox == nil || len(ex.counters) == 0 {
		return
	}
	ex.counters[len(ex.counters)-1]++

	parts := make([]string, len(ex.counters))
	for i, c := range ex.counters {
		parts[i] = strconv.Itoa(c)
	}
	ex.doc.Tasks = append(ex.doc.Tasks, Task{
		Checked: checkbox.IsChecked,
		Text:    strings.TrimSpace(ex.itemText(item)),
		Ord:     strings.Join(parts, "."),
		Parent:  strings.Join(parts[:len(parts)-1], "."),
	})
}

// findCheckbox looks for the TaskList checkbox at the head of the
// item's first text block.
func findCheckbox(item *ast.ListItem) *east.TaskCheckBox {
	block := item.FirstChild()
	if block == nil {
		return nil
	}
	for child := block.FirstChild(); child != nil; child = child.NextSibling() {
		if cb, ok := child.(*east.TaskCheckBox); ok {
			return cb
		}
		// The checkbox is always leading; stop at the first real text.
		if _, ok := child.(*ast.Text); ok {
			return nil
		}
	}
	return nil
}

// itemText renders the item's own text, excluding any nested list.
func (ex *extractor) itemText(item *ast.ListItem) string {
	var sb strings.Builder
	for block := item.FirstChild(); block != nil; block = block.NextSibling() {
		if _, ok := block.(*ast.List); ok {
			continue
		}
		sb.WriteString(ex.nodeText(block))
	}
	return sb.String()
}

func (ex *extractor) nodeText(n ast.Node) string {
	var sb strings.Builder
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(ex.source))
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// nodeOffset finds the byte offset of the first text inside an inline
// node, falling back to the running cursor.
func (ex *extractor) nodeOffset(n ast.Node) int {
	offset := ex.cursor
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return offset
}

// scanWikilinks finds [[target]] and [[target|display]] references in
// the raw body. The bracket syntax is opaque to the AST parser, so this
// runs over source bytes with code regions masked out.
func (ex *extractor) scanWikilinks() {
	for _, m := range wikilinkRe.FindAllSubmatchIndex(ex.source, -1) {
		if ex.inCode(m[0]) {
			continue
		}
		target := strings.TrimSpace(string(ex.source[m[2]:m[3]]))
		display := target
		if m[4] >= 0 {
			display = strings.TrimSpace(string(ex.source[m[4]:m[5]]))
		}
		ex.addWikilink(m[0], target, display)
	}
}

func (ex *extractor) addLink(offset int, url, displayText string) {
	link := Link{
		Kind: LinkInline,
		URL:  url,
		Text: displayText,
	}
	if isExternalURL(url) {
		link.External = true
	} else {
		link.Path = ex.resolve(ex.dir, url)
	}
	ex.pending = append(ex.pending, pendingLink{offset: offset, link: link})
}

// addWikilink records a [[target]] reference. Targets resolve against
// the search root rather than the enclosing directory, with .md assumed
// when no extension is written.
func (ex *extractor) addWikilink(offset int, target, displayText string) {
	link := Link{
		Kind: LinkReference,
		URL:  target,
		Text: displayText,
	}
	name := target
	if filepath.Ext(name) == "" {
		name += ".md"
	}
	link.Path = ex.resolve(ex.root, name)
	ex.pending = append(ex.pending, pendingLink{offset: offset, link: link})
}

// isExternalURL reports whether a target leaves the search root by
// scheme or protocol-relative prefix.
func isExternalURL(url string) bool {
	return strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, "//")
}

// resolve joins a target against a base directory and verifies it stays
// inside the search root. Escapes yield an empty path rather than a
// guessed location.
func (ex *extractor) resolve(base, target string) string {
	// Drop any fragment; it does not affect the file identity.
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return ""
	}
	resolved := filepath.Clean(filepath.Join(base, target))
	rel, err := filepath.Rel(ex.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return resolved
}
