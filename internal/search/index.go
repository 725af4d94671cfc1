// Package search answers text queries over the files of registered notes.
package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/mds/internal/note"
)

const (
	loadWorkers   = 8
	snippetWindow = 40
)

var frontMatterRe = regexp.MustCompile(`(?ms)\A---\s*\n(.*?)\n---\s*\n?`)

type document struct {
	note        note.Note
	frontMatter map[string][]string
	tags        []string
	body        string
}

// Index holds the parsed content of a fixed set of notes.
type Index struct {
	docs []document
}

// Build reads every note file in parallel. Tags are indexed by name only
// and notes whose file vanished are skipped.
func Build(ctx context.Context, notes []note.Note) (*Index, error) {
	docs := make([]document, len(notes))
	loaded := make([]bool, len(notes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadWorkers)
	for i, n := range notes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := loadDocument(n)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("search: indexing %s: %w", n.Name, err)
			}
			docs[i], loaded[i] = doc, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{docs: make([]document, 0, len(docs))}
	for i, doc := range docs {
		if loaded[i] {
			idx.docs = append(idx.docs, doc)
		}
	}
	return idx, nil
}

func (idx *Index) Len() int {
	return len(idx.docs)
}

// Search returns matches in index order. The first matching part of a note
// wins: its name, then its front matter, then its body.
func (idx *Index) Search(q Query) []Result {
	term := strings.ToLower(strings.TrimSpace(q.Term))

	var results []Result
	for _, d := range idx.docs {
		if !d.matchesFilters(q) {
			continue
		}
		if term == "" {
			results = append(results, Result{Note: d.note})
			continue
		}
		if strings.Contains(strings.ToLower(d.note.Name), term) {
			results = append(results, Result{Note: d.note, MatchFrom: FromName})
			continue
		}
		if snippet, ok := d.matchFrontMatter(term); ok {
			results = append(results, Result{Note: d.note, Snippet: snippet, MatchFrom: FromFrontMatter})
			continue
		}
		if !q.Body {
			continue
		}
		if snippet, ok := d.matchBody(term); ok {
			results = append(results, Result{Note: d.note, Snippet: snippet, MatchFrom: FromBody})
		}
	}
	return results
}

// Notes strips results down to their notes.
func Notes(results []Result) []note.Note {
	out := make([]note.Note, len(results))
	for i, r := range results {
		out[i] = r.Note
	}
	return out
}

func loadDocument(n note.Note) (document, error) {
	doc := document{note: n, frontMatter: map[string][]string{}}
	if n.IsTag() {
		return doc, nil
	}

	data, err := n.Read()
	if err != nil {
		return document{}, err
	}
	fm, body := splitFrontMatter(data)
	if doc.frontMatter, doc.tags, err = parseFrontMatter(fm); err != nil {
		return document{}, fmt.Errorf("front matter: %w", err)
	}
	doc.body = string(body)
	return doc, nil
}

func (d document) matchesFilters(q Query) bool {
	for _, required := range q.Tags {
		if !containsFold(d.tags, strings.TrimPrefix(required, "#")) {
			return false
		}
	}
	for key, values := range q.Metadata {
		available, ok := d.frontMatter[key]
		if !ok {
			return false
		}
		for _, want := range values {
			if !containsFold(available, want) {
				return false
			}
		}
	}
	return true
}

func (d document) matchFrontMatter(term string) (string, bool) {
	for key, values := range d.frontMatter {
		for _, value := range values {
			if strings.Contains(strings.ToLower(value), term) {
				return fmt.Sprintf("%s: %s", key, value), true
			}
		}
	}
	return "", false
}

func (d document) matchBody(term string) (string, bool) {
	lowered := strings.ToLower(d.body)
	i := strings.Index(lowered, term)
	if i == -1 {
		return "", false
	}
	// Lowering can change byte lengths, so positions are counted in runes.
	start := utf8.RuneCountInString(lowered[:i])
	return bodySnippet(d.body, start, utf8.RuneCountInString(term)), true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func splitFrontMatter(data []byte) ([]byte, []byte) {
	loc := frontMatterRe.FindSubmatchIndex(data)
	if len(loc) < 4 {
		return nil, data
	}
	return data[loc[2]:loc[3]], data[loc[1]:]
}

func parseFrontMatter(fm []byte) (map[string][]string, []string, error) {
	result := make(map[string][]string)
	if len(fm) == 0 {
		return result, nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(fm, &root); err != nil {
		return nil, nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return result, nil, nil
	}

	mapping := root.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		result[mapping.Content[i].Value] = flattenYAMLValue(mapping.Content[i+1])
	}
	return result, result["tags"], nil
}

func flattenYAMLValue(node *yaml.Node) []string {
	switch node.Kind {
	case yaml.SequenceNode:
		vals := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			vals = append(vals, child.Value)
		}
		return vals
	case yaml.ScalarNode:
		return []string{node.Value}
	default:
		return nil
	}
}

func bodySnippet(body string, index, termLen int) string {
	runes := []rune(body)
	start := max(0, index-snippetWindow)
	end := min(len(runes), index+termLen+snippetWindow)

	snippet := strings.Join(strings.Fields(string(runes[start:end])), " ")
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}
