package feed

import (
	"testing"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		entry    Entry
		want     bool
	}{
		{"title match", []string{"ruling"}, Entry{Title: "New Ruling Issued"}, true},
		{"summary match", []string{"appeal"}, Entry{Title: "Update", Summary: "<p>The APPEAL was granted</p>"}, true},
		{"no match", []string{"ruling"}, Entry{Title: "Court closed", Summary: "Holiday"}, false},
		{"any keyword", []string{"verdict", "ruling"}, Entry{Title: "New Ruling Issued"}, true},
		{"empty keywords", nil, Entry{Title: "New Ruling Issued"}, false},
		{"blank keywords ignored", []string{"", "  "}, Entry{Title: "New Ruling Issued"}, false},
		{"keyword trimmed", []string{" ruling "}, Entry{Title: "New Ruling Issued"}, true},
		{"unicode folding", []string{"STRASSE"}, Entry{Title: "Urteil zur Straße"}, true},
		{"empty entry", []string{"ruling"}, Entry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.keywords)
			if got := m.Match(tt.entry); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMatcher_MatchedKeyword(t *testing.T) {
	m := NewMatcher([]string{"verdict", "Ruling"})

	keyword, ok := m.MatchedKeyword(Entry{Title: "new ruling issued"})
	if !ok {
		t.Fatal("Expected a match")
	}
	if keyword != "Ruling" {
		t.Errorf("Expected keyword 'Ruling' as configured, got: %s", keyword)
	}

	if len(m.Keywords()) != 2 {
		t.Errorf("Expected 2 keywords, got: %d", len(m.Keywords()))
	}
}
