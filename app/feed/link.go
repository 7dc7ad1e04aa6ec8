package feed

import "regexp"

var (
	linkTextPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	linkURLPattern  = regexp.MustCompile(`(?i)<a\s+href=["'](http[^\s"'<>]+)["']`)
)

// ExtractLink finds the first bracketed display text and the first anchor
// href pointing at an http(s) URL in an entry summary.
func ExtractLink(summary string) ExtractedLink {
	var link ExtractedLink

	if m := linkTextPattern.FindStringSubmatch(summary); m != nil {
		link.Text = m[1]
	}
	if m := linkURLPattern.FindStringSubmatch(summary); m != nil {
		link.URL = m[1]
	}

	return link
}
