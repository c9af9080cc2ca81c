// Package media links uploaded creative files to the rows of an import batch.
//
// Matching is name based. Two different files whose normalized names overlap can
// collide; the first upload wins. There is no content hashing.
package media

import (
	"strings"
	"unicode/utf8"
)

// MinFuzzyLength is the length the shorter normalized name must exceed before
// substring containment is accepted.
const MinFuzzyLength = 5

type LinkStatus string

const (
	NoMedia  LinkStatus = "no_media"
	Linked   LinkStatus = "linked"
	Unlinked LinkStatus = "unlinked"
)

// MatchKind reports which rule produced a match.
type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactMatch
	NormalizedMatch
	FuzzyMatch
)

// Library holds the assets of one upload session in upload order.
type Library struct {
	names      []string
	normalized []string
	content    map[string]string
}

func NewLibrary() *Library {
	return &Library{content: make(map[string]string)}
}

// Add registers an asset. Re-adding a name replaces its content but keeps its position.
func (l *Library) Add(name, content string) {
	if _, ok := l.content[name]; !ok {
		l.names = append(l.names, name)
		l.normalized = append(l.normalized, Normalize(name))
	}
	l.content[name] = content
}

func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Names returns asset names in upload order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Match returns the content of the asset linked to reference.
func (l *Library) Match(reference string) (content string, name string, kind MatchKind) {
	if l.Len() == 0 || reference == "" {
		return "", "", NoMatch
	}

	if c, ok := l.content[reference]; ok {
		return c, reference, ExactMatch
	}

	clean := Normalize(reference)
	if clean == "" {
		return "", "", NoMatch
	}

	for i, n := range l.normalized {
		if n != "" && n == clean {
			return l.content[l.names[i]], l.names[i], NormalizedMatch
		}
	}

	for i, n := range l.normalized {
		if n != "" && fuzzy(clean, n) {
			return l.content[l.names[i]], l.names[i], FuzzyMatch
		}
	}
	return "", "", NoMatch
}

// Normalize keeps the last path segment, cuts it at the first dot and lowercases it.
func Normalize(name string) string {
	name = StripQuery(name)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(strings.ToLower(name))
}

// StripQuery drops a URL query string or fragment.
func StripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

func fuzzy(a, b string) bool {
	shorter, longer := a, b
	if utf8.RuneCountInString(b) < utf8.RuneCountInString(a) {
		shorter, longer = b, a
	}
	if utf8.RuneCountInString(shorter) <= MinFuzzyLength {
		return false
	}
	return strings.Contains(longer, shorter)
}
