package feed

// Entry is one feed item as seen by the keyword matcher. Summary holds the raw
// HTML description of the item.
type Entry struct {
	Title   string
	Summary string
}

// ExtractedLink is the display text and URL found in an entry summary.
// Empty fields mean the pattern did not match.
type ExtractedLink struct {
	Text string
	URL  string
}

type Source struct {
	URL string
}
