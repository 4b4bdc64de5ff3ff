package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// punctuation matches every rune that is not a letter, digit, underscore, or
// whitespace. Unicode classes, not ASCII: meeting transcripts are frequently
// non-English.
var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// NormalizeText lowercases the text, replaces punctuation with spaces, and
// collapses all whitespace runs to single spaces. Empty or all-punctuation
// input normalizes to "".
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	normalized := strings.ToLower(text)
	normalized = punctuation.ReplaceAllString(normalized, " ")
	return strings.Join(strings.Fields(normalized), " ")
}

const emptyFingerprint = "0000000000000000"

// Fingerprint returns the 16-hex-character content fingerprint of the
// normalized text, used to bucket candidates before pairwise comparison.
// This is distinct from the dedup key: the key identifies "the same
// commitment" across extraction runs, the fingerprint groups "possibly the
// same text" for the similarity scan.
func Fingerprint(text string) string {
	normalized := NormalizeText(text)
	if normalized == "" {
		return emptyFingerprint
	}
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
