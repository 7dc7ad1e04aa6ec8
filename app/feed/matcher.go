package feed

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher tests entries against a keyword list using Unicode case folding.
type Matcher struct {
	keywords []string
	folded   []string
}

func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{}
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		m.keywords = append(m.keywords, keyword)
		m.folded = append(m.folded, fold(keyword))
	}
	return m
}

func (m *Matcher) Match(entry Entry) bool {
	_, ok := m.MatchedKeyword(entry)
	return ok
}

// MatchedKeyword returns the first keyword found in the title or summary.
func (m *Matcher) MatchedKeyword(entry Entry) (string, bool) {
	if len(m.folded) == 0 {
		return "", false
	}

	title := fold(entry.Title)
	summary := fold(entry.Summary)

	for i, keyword := range m.folded {
		if strings.Contains(title, keyword) || strings.Contains(summary, keyword) {
			return m.keywords[i], true
		}
	}

	return "", false
}

func (m *Matcher) Keywords() []string {
	return m.keywords
}

// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
