package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key returns the dedup key for a matched entry: the extracted link when
// there is one, otherwise a hash of the feed URL and entry title.
func Key(linkURL, feedURL, title string) string {
	if linkURL != "" {
		return linkURL
	}

	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", feedURL, title)))
	return "sha256:" + hex.EncodeToString(hash[:])
}
