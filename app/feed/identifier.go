package feed

import (
	"crypto/sha256"
	"encoding/hex"
)

const itemIDLength = 7

// ItemID derives the deduplication key for an item. The digest covers the
// UTF-8 bytes of title followed by link, without any normalization.
func ItemID(title, link string) string {
	hash := sha256.Sum256([]byte(title + link))
	return hex.EncodeToString(hash[:])[:itemIDLength]
}
