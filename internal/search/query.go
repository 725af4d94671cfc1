package search

import "github.com/Paintersrp/mds/internal/note"

// Query represents a search request against the index.
type Query struct {
	// Term is matched case-insensitively against names, front matter and,
	// with Body set, note bodies. An empty term matches every note that
	// passes the filters.
	Term string
	// Tags lists front-matter tags that must all be present.
	Tags []string
	// Metadata requires front-matter fields to hold every listed value.
	Metadata map[string][]string
	Body     bool
}

// Result is one matching note. MatchFrom tells which part matched.
type Result struct {
	Note      note.Note
	Snippet   string
	MatchFrom string
}

const (
	FromName        = "name"
	FromFrontMatter = "front matter"
	FromBody        = "body"
)
