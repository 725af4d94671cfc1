package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// Relative returns target relative to base with forward slashes.
func Relative(base, target string) (string, error) {
	rel, err := filepath.Rel(NormalizePath(base), NormalizePath(target))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Within reports whether target lies strictly below base.
func Within(base, target string) bool {
	rel, err := Relative(base, target)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, "../")
}

// IsMarkdown matches note files by extension, ignoring case.
func IsMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
