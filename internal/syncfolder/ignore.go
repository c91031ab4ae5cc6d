package syncfolder

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreList excludes host paths from a snapshot using gitignore syntax.
// A nil or empty list ignores nothing.
type IgnoreList struct {
	patterns []string
	ignore   *gitignore.GitIgnore
}

func NewIgnoreList(patterns ...string) *IgnoreList {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		cleaned = append(cleaned, p)
	}

	return &IgnoreList{
		patterns: cleaned,
		ignore:   gitignore.CompileIgnoreLines(cleaned...),
	}
}

// ShouldIgnore checks a path relative to the sync root
func (l *IgnoreList) ShouldIgnore(relPath string) bool {
	if l == nil || len(l.patterns) == 0 {
		return false
	}
	return l.ignore.MatchesPath(filepath.ToSlash(relPath))
}

func (l *IgnoreList) Patterns() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.patterns...)
}
